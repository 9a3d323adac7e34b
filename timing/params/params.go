// Package params holds the user-facing configuration of the simulated
// system: clock frequency, crossbar width, per-role cache parameters, and
// the board's memory and ISA settings. Configurations load from and save to
// JSON files.
package params

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/vulcansim/board"
	"github.com/sarchlab/vulcansim/timing/l1cache"
)

// CacheParams configures one L1 cache. Enabled=false leaves the role's path
// uncached.
type CacheParams struct {
	Enabled bool `json:"enabled"`

	// SizeBytes is the cache capacity in bytes.
	SizeBytes uint64 `json:"size_bytes"`

	// WayAssociativity is the number of ways per set.
	WayAssociativity int `json:"way_associativity"`

	// BlockSize is the cache line size in bytes.
	BlockSize int `json:"block_size"`

	// TagLatency is the tag-lookup latency in cycles.
	TagLatency int `json:"tag_latency"`

	// DataLatency is the data-access latency in cycles.
	DataLatency int `json:"data_latency"`

	// ResponseLatency is the latency of returning a response in cycles.
	ResponseLatency int `json:"response_latency"`

	// NumMSHR is the number of outstanding misses the cache tracks.
	NumMSHR int `json:"num_mshr"`

	// TargetsPerMSHR is the number of requests that can merge into one
	// outstanding miss.
	TargetsPerMSHR int `json:"targets_per_mshr"`
}

// Spec converts the parameters into a cache model spec.
func (p CacheParams) Spec() l1cache.Spec {
	return l1cache.Spec{
		WayAssociativity: p.WayAssociativity,
		TagLatency:       p.TagLatency,
		DataLatency:      p.DataLatency,
		ResponseLatency:  p.ResponseLatency,
		NumMSHR:          p.NumMSHR,
		TargetsPerMSHR:   p.TargetsPerMSHR,
		ByteSize:         p.SizeBytes,
		BlockSize:        p.BlockSize,
	}
}

// Config holds the full configuration of a simulated system.
type Config struct {
	// FreqGHz is the clock frequency of every component in GHz.
	FreqGHz float64 `json:"freq_ghz"`

	// XBarWidthBytes is the crossbar width in bytes per cycle.
	XBarWidthBytes int `json:"xbar_width_bytes"`

	// ICache configures the instruction cache. Disabled by default.
	ICache CacheParams `json:"icache"`

	// DCache configures the data cache. Enabled by default.
	DCache CacheParams `json:"dcache"`

	// MemorySizeBytes is the DRAM capacity in bytes.
	MemorySizeBytes uint64 `json:"memory_size_bytes"`

	// MemoryLatency is the DRAM access latency in cycles.
	MemoryLatency int `json:"memory_latency"`

	// ISA selects the processor's instruction set ("x86", "arm", "riscv").
	ISA string `json:"isa"`

	// CoherentIO attaches an IO-coherent path to the crossbar.
	CoherentIO bool `json:"coherent_io"`
}

// DefaultConfig returns a Config with a data cache on, the instruction path
// uncached, and an x86 processor.
func DefaultConfig() *Config {
	defaultSpec := l1cache.DefaultSpec()

	cacheDefaults := CacheParams{
		SizeBytes:        defaultSpec.ByteSize,
		WayAssociativity: defaultSpec.WayAssociativity,
		BlockSize:        defaultSpec.BlockSize,
		TagLatency:       defaultSpec.TagLatency,
		DataLatency:      defaultSpec.DataLatency,
		ResponseLatency:  defaultSpec.ResponseLatency,
		NumMSHR:          defaultSpec.NumMSHR,
		TargetsPerMSHR:   defaultSpec.TargetsPerMSHR,
	}

	icache := cacheDefaults
	dcache := cacheDefaults
	dcache.Enabled = true

	return &Config{
		FreqGHz:         1,
		XBarWidthBytes:  64,
		ICache:          icache,
		DCache:          dcache,
		MemorySizeBytes: 1 << 20,
		MemoryLatency:   100,
		ISA:             "x86",
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a buildable system.
func (c *Config) Validate() error {
	if c.FreqGHz <= 0 {
		return fmt.Errorf("freq_ghz must be > 0")
	}
	if c.XBarWidthBytes <= 0 {
		return fmt.Errorf("xbar_width_bytes must be > 0")
	}
	if c.MemorySizeBytes == 0 {
		return fmt.Errorf("memory_size_bytes must be > 0")
	}
	if c.MemoryLatency <= 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}

	if _, err := board.ParseISA(c.ISA); err != nil {
		return err
	}

	if err := validateCache("icache", c.ICache); err != nil {
		return err
	}
	if err := validateCache("dcache", c.DCache); err != nil {
		return err
	}

	return nil
}

func validateCache(label string, p CacheParams) error {
	if !p.Enabled {
		return nil
	}

	if p.SizeBytes == 0 || p.WayAssociativity <= 0 || p.BlockSize <= 0 {
		return fmt.Errorf("%s geometry parameters must be > 0", label)
	}

	setSize := uint64(p.BlockSize * p.WayAssociativity)
	if p.SizeBytes%setSize != 0 {
		return fmt.Errorf("%s size %d is not an integer number of %d-byte sets",
			label, p.SizeBytes, setSize)
	}

	if p.TagLatency < 0 || p.DataLatency < 0 || p.ResponseLatency < 0 {
		return fmt.Errorf("%s latencies must not be negative", label)
	}

	if p.NumMSHR <= 0 || p.TargetsPerMSHR <= 0 {
		return fmt.Errorf("%s must have at least one MSHR and one target",
			label)
	}

	return nil
}

// Clone returns an independent copy of the Config. The struct holds only
// value fields, so a plain copy suffices.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
