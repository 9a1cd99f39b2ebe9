//go:build darwin

package speech

func (s *System) synthCommand(text string) (string, []string, error) {
	path, err := s.lookPath("say")
	if err != nil {
		return "", nil, err
	}
	return path, []string{"-r", s.rateArg(), "--", text}, nil
}
