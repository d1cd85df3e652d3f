package tolerantjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrUndecodable is matched by every *DecodeError.
var ErrUndecodable = errors.New("undecodable json")

// DecodeError is returned when no decoding strategy produced a value.
type DecodeError struct {
	Input string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse JSON: %s", e.Input)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrUndecodable
}

// Stage names a decoding strategy.
type Stage string

const (
	StageStrict     Stage = "strict"
	StageNormalized Stage = "normalized"
	StageReplaced   Stage = "replaced"
	StageRepaired   Stage = "repaired"
)

type Option func(*Decoder)

// WithRepair appends a jsonrepair pass after the quote based strategies.
func WithRepair() Option {
	return func(d *Decoder) {
		d.repair = true
	}
}

// Decoder runs the decoding strategies in order and keeps the first value that parses.
type Decoder struct {
	repair bool
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode parses input with the default three-stage decoder.
func Decode(input string) (interface{}, error) {
	return defaultDecoder.Decode(input)
}

// Unmarshal parses input strictly, the way encoding/json does.
func Unmarshal(input string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Decoder) Decode(input string) (interface{}, error) {
	v, _, err := d.DecodeStage(input)
	return v, err
}

// DecodeStage is Decode that also reports which strategy succeeded.
func (d *Decoder) DecodeStage(input string) (interface{}, Stage, error) {
	if v, err := Unmarshal(input); err == nil {
		return v, StageStrict, nil
	}

	if v, err := Unmarshal(Normalize(input)); err == nil {
		return v, StageNormalized, nil
	}

	if v, err := Unmarshal(strings.ReplaceAll(input, "'", `"`)); err == nil {
		return v, StageReplaced, nil
	}

	if d.repair {
		if repaired, err := jsonrepair.JSONRepair(input); err == nil {
			if v, err := Unmarshal(repaired); err == nil {
				return v, StageRepaired, nil
			}
		}
	}

	return nil, "", &DecodeError{Input: input}
}
