package cli

import (
	"fmt"
	"strings"
)

// Flag wrappers that remember whether the operator set them, so config file
// values only fill the gaps.

type stringFlag struct {
	Value  string
	WasSet bool
}

func (s *stringFlag) String() string { return s.Value }
func (s *stringFlag) Set(v string) error {
	s.Value = v
	s.WasSet = true
	return nil
}

type intFlag struct {
	Value  int
	WasSet bool
}

func (i *intFlag) String() string { return fmt.Sprintf("%d", i.Value) }
func (i *intFlag) Set(v string) error {
	var parsed int
	if _, err := fmt.Sscanf(v, "%d", &parsed); err != nil {
		return err
	}
	i.Value = parsed
	i.WasSet = true
	return nil
}

type boolFlag struct {
	Value  bool
	WasSet bool
}

func (b *boolFlag) String() string { return fmt.Sprintf("%t", b.Value) }
func (b *boolFlag) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	b.Value = v == "true" || v == "1" || v == "yes" || v == "y"
	b.WasSet = true
	return nil
}

func (b *boolFlag) IsBoolFlag() bool { return true }

type stringListFlag struct {
	Values []string
	WasSet bool
}

func (s *stringListFlag) String() string { return strings.Join(s.Values, ",") }
func (s *stringListFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			s.Values = append(s.Values, part)
		}
	}
	s.WasSet = true
	return nil
}
