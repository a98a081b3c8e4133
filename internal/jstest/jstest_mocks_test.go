package jstest

import (
	"context"

	"jstestctl/internal/launcher"

	"github.com/stretchr/testify/mock"
)

// Mock Launcher
type mockLauncher struct {
	mock.Mock
}

func (m *mockLauncher) Launch(ctx context.Context, req launcher.Request) (launcher.Process, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(launcher.Process), args.Error(1)
}

// Mock Process
type mockProcess struct {
	mock.Mock
}

func (m *mockProcess) PID() int {
	args := m.Called()
	return args.Int(0)
}

func (m *mockProcess) Wait() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// exitingProcess returns a process whose Wait returns code and err.
func exitingProcess(code int, err error) *mockProcess {
	p := &mockProcess{}
	p.On("Wait").Return(code, err).Once()
	return p
}

// panickingProcess panics inside Wait.
type panickingProcess struct{}

func (panickingProcess) PID() int { return 1 }

func (panickingProcess) Wait() (int, error) {
	panic("shell exploded")
}

// forThread matches the launch request of one client.
func forThread(threadID int) interface{} {
	return mock.MatchedBy(func(req launcher.Request) bool {
		return req.ThreadID == threadID
	})
}
