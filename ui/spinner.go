package ui

import (
	"strings"
	"sync"
)

const spinnerDotSet = "⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏"

type spinner struct {
	index   int
	charset []string
	lock    sync.Mutex
}

func newSpinner(charset string) *spinner {
	return &spinner{
		charset: strings.Split(charset, ""),
	}
}

func (s *spinner) Next() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	c := s.charset[s.index]
	s.index++
	if s.index >= len(s.charset) {
		s.index = 0
	}
	return c
}
