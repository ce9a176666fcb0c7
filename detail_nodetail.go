//go:build ntt_nodetail

package ntt

func detail(error) string {
	return ""
}
