package wireless

// SimRadio is a scriptable radio for bench runs and tests. Join succeeds
// after JoinAfterPolls status reads, so retry loops can be exercised.
type SimRadio struct {
	Addr string

	JoinErr        error
	APErr          error
	JoinAfterPolls int

	JoinCalls   int
	APCalls     int
	StatusPolls int

	state     LinkState
	pollsToGo int
}

func NewSimRadio(addr string) *SimRadio {
	return &SimRadio{Addr: addr, state: StateDisconnected}
}

func (s *SimRadio) Status() LinkState {
	s.StatusPolls++
	if s.state == StateConnecting {
		if s.pollsToGo > 0 {
			s.pollsToGo--
		}
		if s.pollsToGo == 0 {
			s.state = StateConnected
		}
	}
	return s.state
}

func (s *SimRadio) Join(name, secret string) error {
	s.JoinCalls++
	if s.JoinErr != nil {
		s.state = StateFailed
		return s.JoinErr
	}
	if s.JoinAfterPolls <= 0 {
		s.state = StateConnected
		return nil
	}
	s.state = StateConnecting
	s.pollsToGo = s.JoinAfterPolls
	return nil
}

func (s *SimRadio) StartAccessPoint(name, secret string) error {
	s.APCalls++
	if s.APErr != nil {
		return s.APErr
	}
	s.state = StateAccessPoint
	return nil
}

func (s *SimRadio) StopAccessPoint() {
	if s.state == StateAccessPoint {
		s.state = StateDisconnected
	}
}

func (s *SimRadio) HardwareAddress() (string, error) {
	if s.Addr == "" {
		return "00:00:00:00:00:00", nil
	}
	return s.Addr, nil
}

// SetState overrides the link state, for scripting disconnects mid-test.
func (s *SimRadio) SetState(state LinkState) { s.state = state }
