// Package mocks provides generated mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the console's port interfaces. Hand-written doubles for the auth ports live
// in the auth subpackage; the generated mock below suits tests that want
// expectation-style assertions.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().VerifySession(gomock.Any(), "token").Return(user, nil)
package mocks

// Generate mock for the Backend interface from internal/ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/probeops/console/internal/ports Backend
