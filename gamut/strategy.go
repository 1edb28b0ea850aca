package gamut

import (
	"fmt"
	"strings"
)

// Strategy names a way of bringing an Oklab value into the sRGB gamut.
type Strategy int

const (
	StrategyClip Strategy = iota
	StrategyProject
	StrategyChroma
	StrategyLightness
	StrategyClosest
)

var strategyNames = []string{
	StrategyClip:      "clip",
	StrategyProject:   "project",
	StrategyChroma:    "chroma",
	StrategyLightness: "lightness",
	StrategyClosest:   "closest",
}

func (st Strategy) String() string {
	if st < 0 || int(st) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(st))
	}
	return strategyNames[st]
}

func (st Strategy) MarshalText() ([]byte, error) {
	if st < 0 || int(st) >= len(strategyNames) {
		return nil, fmt.Errorf("unknown gamut strategy: %d", int(st))
	}
	return []byte(st.String()), nil
}

func (st *Strategy) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, name := range strategyNames {
		if name == s {
			*st = Strategy(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gamut strategy %q, should be one of %s", s, strings.Join(strategyNames, ", "))
}
