package config

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

type checksumPayload struct {
	Options  OptionsConfig   `json:"options"`
	Kernel   KernelConfig    `json:"kernel"`
	Datasets []DatasetConfig `json:"datasets"`
}

// ConfigChecksum returns a short, stable checksum that identifies the
// effective sweep (options, kernel, arguments and datasets), independent of
// the benchmark name, description and export targets.
//
// It computes MD5 over the JSON representation and returns the first 6 hex
// characters (equivalent to `md5sum | cut -c1-6`).
func ConfigChecksum(cfg *BenchmarkConfig) (string, error) {
	if cfg == nil {
		return "", nil
	}

	payload := checksumPayload{
		Options:  cfg.Options,
		Kernel:   cfg.Kernel,
		Datasets: cfg.Datasets,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(b)
	hexStr := hex.EncodeToString(sum[:])
	if len(hexStr) > 6 {
		hexStr = hexStr[:6]
	}
	return hexStr, nil
}
