// internal/model/command.go
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ErrInvalidArgument is returned by command builders for out-of-range arguments
var ErrInvalidArgument = errors.New("invalid command argument")

// Command names understood by the panel firmware
const (
	CmdVideoSelect         = "VIDEO_SELECT"
	CmdTestBeep            = "TEST_BEEP"
	CmdScanStart           = "FPV_SCAN_START"
	CmdHoldSet             = "FPV_HOLD_SET"
	CmdMuteSet             = "MUTE_SET"
	CmdTuneFreq            = "FPV_TUNE_FREQ"
	CmdTuneIndex           = "FPV_TUNE_INDEX"
	CmdSetThresholdProfile = "FPV_SET_THRESHOLD_PROFILE"
	CmdSetBandProfile      = "FPV_SET_BAND_PROFILE"
	CmdSetLEDs             = "SET_LEDS"
)

// Valid ranges for video channels and receiver ids
const (
	MinChannel  = 1
	MaxChannel  = 3
	MinReceiver = 1
	MaxReceiver = 3
)

// ThresholdProfiles lists the detection sensitivity presets
var ThresholdProfiles = []string{"Sensitive", "Balanced", "Strict"}

// BandProfiles lists the supported receiver bands
var BandProfiles = []string{"5.8G", "3.3G", "1.2G"}

// CommandEnvelope is a host-to-device command line
type CommandEnvelope struct {
	ID   string                 `json:"id"`
	Cmd  string                 `json:"cmd" binding:"required"`
	Args map[string]interface{} `json:"args"`
}

// NewCommandID returns a fresh command correlation id
func NewCommandID() string {
	return uuid.NewString()
}

// NewCommand builds an envelope, generating an id when none is given
func NewCommand(id, cmd string, args map[string]interface{}) CommandEnvelope {
	if id == "" {
		id = NewCommandID()
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return CommandEnvelope{ID: id, Cmd: cmd, Args: args}
}

// VideoSelect switches the video output to channel 1..3
func VideoSelect(id string, channel int) (CommandEnvelope, error) {
	if channel < MinChannel || channel > MaxChannel {
		return CommandEnvelope{}, fmt.Errorf("%w: channel %d out of range %d..%d",
			ErrInvalidArgument, channel, MinChannel, MaxChannel)
	}
	return NewCommand(id, CmdVideoSelect, map[string]interface{}{"ch": channel}), nil
}

// TestBeep asks the panel to beep and flash its command overlay
func TestBeep(id string) CommandEnvelope {
	return NewCommand(id, CmdTestBeep, nil)
}

// ScanStart triggers a band scan on every receiver
func ScanStart(id string) CommandEnvelope {
	return NewCommand(id, CmdScanStart, nil)
}

// HoldSet toggles the receiver hold mode
func HoldSet(id string, hold bool) CommandEnvelope {
	return NewCommand(id, CmdHoldSet, map[string]interface{}{"hold": boolToInt(hold)})
}

// MuteSet toggles the buzzer mute
func MuteSet(id string, mute bool) CommandEnvelope {
	return NewCommand(id, CmdMuteSet, map[string]interface{}{"mute": boolToInt(mute)})
}

// TuneFrequency pins a receiver to a frequency in MHz
func TuneFrequency(id string, receiver, freqMHz int) (CommandEnvelope, error) {
	if err := checkReceiver(receiver); err != nil {
		return CommandEnvelope{}, err
	}
	if freqMHz <= 0 {
		return CommandEnvelope{}, fmt.Errorf("%w: frequency %d MHz", ErrInvalidArgument, freqMHz)
	}
	return NewCommand(id, CmdTuneFreq, map[string]interface{}{
		"vrx_id":   receiver,
		"freq_mhz": freqMHz,
	}), nil
}

// TuneIndex pins a receiver to an entry of its band table
func TuneIndex(id string, receiver, index int) (CommandEnvelope, error) {
	if err := checkReceiver(receiver); err != nil {
		return CommandEnvelope{}, err
	}
	if index < 0 {
		return CommandEnvelope{}, fmt.Errorf("%w: index %d", ErrInvalidArgument, index)
	}
	return NewCommand(id, CmdTuneIndex, map[string]interface{}{
		"vrx_id": receiver,
		"idx":    index,
	}), nil
}

// SetThresholdProfile selects a detection sensitivity preset
func SetThresholdProfile(id, profile string) (CommandEnvelope, error) {
	if !oneOf(ThresholdProfiles, profile) {
		return CommandEnvelope{}, fmt.Errorf("%w: threshold profile %q", ErrInvalidArgument, profile)
	}
	return NewCommand(id, CmdSetThresholdProfile, map[string]interface{}{"threshold": profile}), nil
}

// SetBandProfile selects the receiver band
func SetBandProfile(id, band string) (CommandEnvelope, error) {
	if !oneOf(BandProfiles, band) {
		return CommandEnvelope{}, fmt.Errorf("%w: band profile %q", ErrInvalidArgument, band)
	}
	return NewCommand(id, CmdSetBandProfile, map[string]interface{}{"band": band}), nil
}

// SetLEDs drives the three panel LEDs
func SetLEDs(id string, red, yellow, green bool) CommandEnvelope {
	return NewCommand(id, CmdSetLEDs, map[string]interface{}{
		"r": boolToInt(red),
		"y": boolToInt(yellow),
		"g": boolToInt(green),
	})
}

// BuildCommand validates a named command against its builder and returns the
// canonical envelope. Numeric args may arrive as any JSON number; bool args
// accept true/false or 0/1. Unknown command names pass through unchanged.
func BuildCommand(id, cmd string, args map[string]interface{}) (CommandEnvelope, error) {
	switch cmd {
	case "":
		return CommandEnvelope{}, fmt.Errorf("%w: cmd is required", ErrInvalidArgument)
	case CmdVideoSelect:
		ch, err := intArg(args, "ch")
		if err != nil {
			return CommandEnvelope{}, err
		}
		return VideoSelect(id, ch)
	case CmdTestBeep:
		return TestBeep(id), nil
	case CmdScanStart:
		return ScanStart(id), nil
	case CmdHoldSet:
		hold, err := boolArg(args, "hold")
		if err != nil {
			return CommandEnvelope{}, err
		}
		return HoldSet(id, hold), nil
	case CmdMuteSet:
		mute, err := boolArg(args, "mute")
		if err != nil {
			return CommandEnvelope{}, err
		}
		return MuteSet(id, mute), nil
	case CmdTuneFreq:
		receiver, err := intArg(args, "vrx_id")
		if err != nil {
			return CommandEnvelope{}, err
		}
		freq, err := intArg(args, "freq_mhz")
		if err != nil {
			return CommandEnvelope{}, err
		}
		return TuneFrequency(id, receiver, freq)
	case CmdTuneIndex:
		receiver, err := intArg(args, "vrx_id")
		if err != nil {
			return CommandEnvelope{}, err
		}
		index, err := intArg(args, "idx")
		if err != nil {
			return CommandEnvelope{}, err
		}
		return TuneIndex(id, receiver, index)
	case CmdSetThresholdProfile:
		profile, err := stringArg(args, "threshold")
		if err != nil {
			return CommandEnvelope{}, err
		}
		return SetThresholdProfile(id, profile)
	case CmdSetBandProfile:
		band, err := stringArg(args, "band")
		if err != nil {
			return CommandEnvelope{}, err
		}
		return SetBandProfile(id, band)
	case CmdSetLEDs:
		var leds [3]bool
		for i, key := range []string{"r", "y", "g"} {
			on, err := boolArg(args, key)
			if err != nil {
				return CommandEnvelope{}, err
			}
			leds[i] = on
		}
		return SetLEDs(id, leds[0], leds[1], leds[2]), nil
	default:
		return NewCommand(id, cmd, args), nil
	}
}

func intArg(args map[string]interface{}, key string) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing %q", ErrInvalidArgument, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n), nil
		}
	case interface{ Int64() (int64, error) }:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q must be an integer, got %v", ErrInvalidArgument, key, v)
}

func boolArg(args map[string]interface{}, key string) (bool, error) {
	if b, ok := args[key].(bool); ok {
		return b, nil
	}
	n, err := intArg(args, key)
	if err != nil {
		return false, err
	}
	if n != 0 && n != 1 {
		return false, fmt.Errorf("%w: %q must be 0 or 1, got %d", ErrInvalidArgument, key, n)
	}
	return n == 1, nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	s, ok := args[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", ErrInvalidArgument, key)
	}
	return s, nil
}

func checkReceiver(receiver int) error {
	if receiver < MinReceiver || receiver > MaxReceiver {
		return fmt.Errorf("%w: receiver %d out of range %d..%d",
			ErrInvalidArgument, receiver, MinReceiver, MaxReceiver)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func oneOf(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
