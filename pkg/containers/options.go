package containers

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/benbjohnson/clock"
	"github.com/pingcap/log"

	derror "github.com/hanfei1991/conqueue/pkg/errors"
)

const (
	defaultSpinLimit  = 8
	defaultYieldLimit = 128
)

// TomlDuration is a time.Duration that decodes from a TOML or JSON string
// such as "200us" or "1ms".
type TomlDuration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *TomlDuration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d TomlDuration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// BackoffOptions tunes how a LinkedQueue behaves between failed retries of
// its compare-and-swap loops. The zero value of every field means "use the
// default" when the options come from a file; options passed to
// WithBackoff are taken verbatim.
//
// The schedule is: busy-spin for the first SpinLimit retries, yield the
// processor up to YieldLimit retries, then sleep with exponentially growing
// pauses starting at SleepBase and capped at SleepCap. A zero SleepBase
// disables sleeping entirely, so the operation yields forever and never
// blocks; this is the default.
type BackoffOptions struct {
	SpinLimit  int          `toml:"spin-limit" json:"spin-limit"`
	YieldLimit int          `toml:"yield-limit" json:"yield-limit"`
	SleepBase  TomlDuration `toml:"sleep-base" json:"sleep-base"`
	SleepCap   TomlDuration `toml:"sleep-cap" json:"sleep-cap"`
}

// DefaultBackoffOptions returns the yield-only schedule used when the
// caller configures nothing.
func DefaultBackoffOptions() *BackoffOptions {
	return &BackoffOptions{
		SpinLimit:  defaultSpinLimit,
		YieldLimit: defaultYieldLimit,
	}
}

// LoadBackoffOptions reads options from a TOML file. Unknown keys are
// rejected so a typo cannot silently disable a limit.
func LoadBackoffOptions(path string) (*BackoffOptions, error) {
	opts := &BackoffOptions{}
	metaData, err := toml.DecodeFile(path, opts)
	if err != nil {
		return nil, derror.Wrap(derror.ErrConfigDecodeFile, err)
	}
	undecoded := metaData.Undecoded()
	if len(undecoded) > 0 {
		var undecodedItems []string
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		return nil, derror.ErrConfigUnknownItem.GenWithStackByArgs(strings.Join(undecodedItems, ","))
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.adjust()
	return opts, nil
}

func (o *BackoffOptions) validate() error {
	if o.SpinLimit < 0 {
		return derror.ErrConfigInvalid.GenWithStackByArgs("spin-limit must not be negative")
	}
	if o.YieldLimit < 0 {
		return derror.ErrConfigInvalid.GenWithStackByArgs("yield-limit must not be negative")
	}
	if o.SleepBase.Duration < 0 {
		return derror.ErrConfigInvalid.GenWithStackByArgs("sleep-base must not be negative")
	}
	if o.SleepCap.Duration != 0 && o.SleepCap.Duration < o.SleepBase.Duration {
		return derror.ErrConfigInvalid.GenWithStackByArgs("sleep-cap must not be smaller than sleep-base")
	}
	return nil
}

func (o *BackoffOptions) adjust() {
	if o.SpinLimit == 0 {
		o.SpinLimit = defaultSpinLimit
	}
	if o.YieldLimit == 0 {
		o.YieldLimit = defaultYieldLimit
	}
	if o.SleepBase.Duration > 0 && o.SleepCap.Duration == 0 {
		// four doublings before the schedule flattens out
		o.SleepCap.Duration = o.SleepBase.Duration << 4
	}
}

// Toml returns TOML format representation of the options.
func (o *BackoffOptions) Toml() (string, error) {
	var b bytes.Buffer
	err := toml.NewEncoder(&b).Encode(o)
	if err != nil {
		log.L().Error("fail to marshal options to toml", log.ShortError(err))
		return "", derror.Wrap(derror.ErrConfigInvalid, err, "encode")
	}
	return b.String(), nil
}

func (o *BackoffOptions) String() string {
	cfg, err := json.Marshal(o)
	if err != nil {
		log.L().Error("marshal to json", log.ShortError(err))
	}
	return string(cfg)
}

type linkedQueueOptions struct {
	backoff BackoffOptions
	clk     clock.Clock
}

// LinkedQueueOption customizes a LinkedQueue at construction time.
type LinkedQueueOption func(*linkedQueueOptions)

// WithBackoff replaces the default retry schedule wholesale. Zero fields
// are respected, so BackoffOptions{} yields on every retry and never spins
// nor sleeps.
func WithBackoff(opts BackoffOptions) LinkedQueueOption {
	return func(o *linkedQueueOptions) {
		o.backoff = opts
	}
}

// WithClock substitutes the clock used by the sleep phase of the backoff
// schedule. Tests drive a mock clock through this.
func WithClock(clk clock.Clock) LinkedQueueOption {
	return func(o *linkedQueueOptions) {
		o.clk = clk
	}
}
