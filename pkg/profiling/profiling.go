package profiling

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/config"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
)

const defaultAppName = "vsconnecto-api"

// Identity labels every uploaded profile so instances can be told apart
type Identity struct {
	ServiceName string
	Namespace   string
	Environment string
	Version     string
	InstanceID  string
}

var sampleGroups = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"inuse_space":   {pyroscope.ProfileInuseSpace},
	"inuse_objects": {pyroscope.ProfileInuseObjects},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// defaultSampleTypes is used when no sample types are configured
var defaultSampleTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
}

// Start begins continuous profiling and returns a stop function. It is a no-op when disabled.
func Start(cfg config.ProfilingConfig, id Identity) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	interval := time.Duration(cfg.UploadIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}

	types, err := sampleTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	appName := cfg.AppName
	if strings.TrimSpace(appName) == "" {
		appName = defaultAppName
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: strings.TrimSpace(appName),
		ServerAddress:   endpoint,
		UploadRate:      interval,
		ProfileTypes:    types,
		Tags:            id.tags(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling started",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Duration("upload_interval", interval),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

// tags drops empty labels so the profiling backend does not index blank values
func (id Identity) tags() map[string]string {
	all := map[string]string{
		"service_name":    id.ServiceName,
		"namespace":       id.Namespace,
		"environment":     id.Environment,
		"service_version": id.Version,
		"instance":        id.InstanceID,
	}
	out := make(map[string]string, len(all))
	for k, v := range all {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func sampleTypes(raw string) ([]pyroscope.ProfileType, error) {
	if strings.TrimSpace(raw) == "" {
		return defaultSampleTypes, nil
	}

	seen := make(map[pyroscope.ProfileType]bool)
	var out []pyroscope.ProfileType
	for _, name := range strings.Split(raw, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		group, ok := sampleGroups[name]
		if !ok {
			return nil, fmt.Errorf("unsupported profiling sample type %q (supported: %s)", name, supportedNames())
		}
		for _, t := range group {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	if len(out) == 0 {
		return defaultSampleTypes, nil
	}
	return out, nil
}

func supportedNames() string {
	names := make([]string, 0, len(sampleGroups))
	for name := range sampleGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
