package proxy

// MockService is a test double for Service.
type MockService struct {
	Unit       string
	StopCalls  int
	StartCalls int
	StopErr    error
	StartErr   error
}

// Name returns the configured unit name.
func (m *MockService) Name() string {
	if m.Unit == "" {
		return "nginx"
	}
	return m.Unit
}

// Stop records the call.
func (m *MockService) Stop() error {
	m.StopCalls++
	return m.StopErr
}

// Start records the call.
func (m *MockService) Start() error {
	m.StartCalls++
	return m.StartErr
}
