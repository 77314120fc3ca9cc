// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/emojicheck/internal/browser"
	"github.com/xkilldash9x/emojicheck/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Wait() config.WaitConfig {
	args := m.Called()
	return args.Get(0).(config.WaitConfig)
}

func (m *MockConfig) Target() config.TargetConfig {
	args := m.Called()
	return args.Get(0).(config.TargetConfig)
}

func (m *MockConfig) Scenario() config.ScenarioConfig {
	args := m.Called()
	return args.Get(0).(config.ScenarioConfig)
}

func (m *MockConfig) Report() config.ReportConfig {
	args := m.Called()
	return args.Get(0).(config.ReportConfig)
}

// --- Setters ---

func (m *MockConfig) SetBrowserHeadless(b bool) {
	m.Called(b)
}

func (m *MockConfig) SetTargetURL(u string) {
	m.Called(u)
}

func (m *MockConfig) SetScenarioSecretText(s string) {
	m.Called(s)
}

func (m *MockConfig) SetReportFormats(formats []string) {
	m.Called(formats)
}

// -- Session Provider Mock --

// MockSessionProvider mocks scenario.SessionProvider.
type MockSessionProvider struct {
	mock.Mock
}

func (m *MockSessionProvider) Acquire(ctx context.Context) (browser.Driver, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(browser.Driver)
	return d, args.Error(1)
}

func (m *MockSessionProvider) Release(d browser.Driver) error {
	args := m.Called(d)
	return args.Error(0)
}
