package ca

// MockAuthority is a test double for Authority. It records every request
// and generates real (small-key) certificates unless an error or canned
// response is configured.
type MockAuthority struct {
	Calls        []Request
	Err          error
	SelfSignFunc func(req Request) ([]byte, []byte, error)
}

// SelfSign records the call and delegates to the configured behavior.
func (m *MockAuthority) SelfSign(req Request) ([]byte, []byte, error) {
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, nil, m.Err
	}
	if m.SelfSignFunc != nil {
		return m.SelfSignFunc(req)
	}
	// 1024-bit keys keep tests fast; the output is still a valid pair.
	req.KeySize = 1024
	return NewX509Authority().SelfSign(req)
}
