package device

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricsNamespace = "ntt"
	deviceSubsystem  = "device"
)

type metrics struct {
	launches       *prometheus.CounterVec
	launchFailures *prometheus.CounterVec
	bytesCopied    *prometheus.CounterVec
	allocatedBytes prometheus.Gauge
}

func newMetrics(id int, reg prometheus.Registerer) (*metrics, error) {
	labels := prometheus.Labels{"device": strconv.Itoa(id)}

	launches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   deviceSubsystem,
			Name:        "kernel_launches_total",
			Help:        "Number of kernel launches by kernel",
			ConstLabels: labels,
		},
		[]string{"kernel"},
	)

	launchFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   deviceSubsystem,
			Name:        "kernel_launch_failures_total",
			Help:        "Number of kernel launches that failed, by kernel",
			ConstLabels: labels,
		},
		[]string{"kernel"},
	)

	bytesCopied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   deviceSubsystem,
			Name:        "bytes_copied_total",
			Help:        "Bytes copied between host and device, by direction",
			ConstLabels: labels,
		},
		[]string{"direction"},
	)

	allocatedBytes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   deviceSubsystem,
			Name:        "allocated_bytes",
			Help:        "Bytes currently allocated on the device",
			ConstLabels: labels,
		},
	)

	m := &metrics{
		launches:       launches,
		launchFailures: launchFailures,
		bytesCopied:    bytesCopied,
		allocatedBytes: allocatedBytes,
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{launches, launchFailures, bytesCopied, allocatedBytes} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(err, "failed to register metrics of device %d", id)
		}
	}

	return m, nil
}
