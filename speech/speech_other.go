//go:build !darwin && !linux

package speech

import "errors"

func (s *System) synthCommand(string) (string, []string, error) {
	return "", nil, errors.New("speech not supported on this platform")
}
