package doctor

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCheck is a Check backed by testify/mock.
type MockCheck struct {
	mock.Mock
}

func (m *MockCheck) Name() string {
	return m.Called().String(0)
}

func (m *MockCheck) Category() string {
	return m.Called().String(0)
}

func (m *MockCheck) Run(ctx context.Context) *CheckResult {
	ret := m.Called(ctx)
	res, _ := ret.Get(0).(*CheckResult)
	return res
}

// MockFixer is a MockCheck that also implements Fixer.
type MockFixer struct {
	MockCheck
}

func (m *MockFixer) CanFix() bool {
	return m.Called().Bool(0)
}

func (m *MockFixer) Fix(ctx context.Context) []FixResult {
	ret := m.Called(ctx)
	res, _ := ret.Get(0).([]FixResult)
	return res
}

func resultCheck(status Severity) *MockCheck {
	m := &MockCheck{}
	m.On("Run", mock.Anything).Return(&CheckResult{Name: status.String(), Status: status})
	return m
}
