//go:build !ntt_nodetail

package ntt

func detail(err error) string {
	return err.Error()
}
