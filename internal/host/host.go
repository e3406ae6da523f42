// Package host describes the machine a sweep runs on so reports from
// different hosts can be told apart.
package host

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"parallel-bench/internal/logging"

	"code.cloudfoundry.org/bytefmt"
	"github.com/intel/goresctrl/pkg/rdt"
	"github.com/sirupsen/logrus"
)

type Info struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	KernelVersion string `json:"kernel_version"`
	CPUVendor     string `json:"cpu_vendor"`
	CPUModel      string `json:"cpu_model"`
	LogicalCores  int    `json:"logical_cores"`
	Sockets       int    `json:"sockets"`
	// L3Cache is human readable, empty when sysfs does not expose it.
	L3Cache    string   `json:"l3_cache,omitempty"`
	RDT        *RDTInfo `json:"rdt,omitempty"`
	GoVersion  string   `json:"go_version"`
	GOMAXPROCS int      `json:"gomaxprocs"`
}

type RDTInfo struct {
	Supported          bool                `json:"supported"`
	MonitoringFeatures map[string][]string `json:"monitoring_features,omitempty"`
	Classes            []string            `json:"classes,omitempty"`
}

// Paths read by Detect, overridable in tests.
var (
	procVersion = "/proc/version"
	procCPUInfo = "/proc/cpuinfo"
	cacheSizes  = []string{
		"/sys/devices/system/cpu/cpu0/cache/index3/size",
		"/sys/devices/system/cpu/cpu0/cache/index2/size",
	}
)

// Detect collects the host description. With probeRDT set it also asks
// resctrl for Intel RDT support; a failing probe is reported as unsupported.
func Detect(probeRDT bool) (*Info, error) {
	logger := logging.GetLogger()

	info := &Info{
		OS:           runtime.GOOS + "/" + runtime.GOARCH,
		LogicalCores: runtime.NumCPU(),
		GoVersion:    runtime.Version(),
		GOMAXPROCS:   runtime.GOMAXPROCS(0),
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get hostname: %w", err)
	}
	info.Hostname = hostname
	info.KernelVersion = kernelVersion()
	info.readCPUInfo()

	if size, err := l3CacheSize(); err == nil {
		info.L3Cache = bytefmt.ByteSize(uint64(size))
	} else {
		logger.WithError(err).Debug("L3 cache size unavailable")
	}

	if probeRDT {
		info.RDT = detectRDT(logger)
	}

	logger.WithFields(logrus.Fields{
		"hostname":      info.Hostname,
		"cpu_model":     info.CPUModel,
		"logical_cores": info.LogicalCores,
		"l3_cache":      info.L3Cache,
	}).Debug("Host description collected")

	return info, nil
}

func kernelVersion() string {
	if data, err := os.ReadFile(procVersion); err == nil {
		version := strings.Fields(string(data))
		if len(version) >= 3 {
			return version[2]
		}
	}
	return "unknown"
}

func (info *Info) readCPUInfo() {
	info.CPUVendor = "unknown"
	info.CPUModel = "unknown"
	info.Sockets = 1

	file, err := os.Open(procCPUInfo)
	if err != nil {
		return
	}
	defer file.Close()

	var vendor, model string
	sockets := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "vendor_id":
			if vendor == "" {
				vendor = value
			}
		case "model name":
			if model == "" {
				model = value
			}
		case "physical id":
			sockets[value] = true
		}
	}

	if vendor != "" {
		info.CPUVendor = vendor
	}
	if model != "" {
		info.CPUModel = model
	}
	if len(sockets) > 0 {
		info.Sockets = len(sockets)
	}
}

// l3CacheSize parses sysfs sizes like "8192K", "32M" or plain bytes.
func l3CacheSize() (int64, error) {
	for _, path := range cacheSizes {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		size, err := parseCacheSize(strings.TrimSpace(string(data)))
		if err == nil {
			return size, nil
		}
	}
	return 0, fmt.Errorf("could not determine L3 cache size")
}

func parseCacheSize(s string) (int64, error) {
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return n * multiplier, nil
}

// goresctrl's rdt package keeps global state and is not safe for concurrent
// use.
var rdtMu sync.Mutex

func detectRDT(logger *logrus.Logger) *RDTInfo {
	rdtMu.Lock()
	defer rdtMu.Unlock()

	info := &RDTInfo{}
	if err := rdt.Initialize(""); err != nil {
		logger.WithError(err).Warn("RDT not available on this host")
		return info
	}
	info.Supported = rdt.MonSupported()
	if !info.Supported {
		return info
	}
	for _, class := range rdt.GetClasses() {
		info.Classes = append(info.Classes, class.Name())
	}
	info.MonitoringFeatures = make(map[string][]string)
	for resource, features := range rdt.GetMonFeatures() {
		info.MonitoringFeatures[string(resource)] = features
	}
	return info
}
