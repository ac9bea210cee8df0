// Package mocks provides mock implementations for testing the client's collaborators.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	transport := mocks.NewMockTransport(ctrl)
//	transport.EXPECT().Do(gomock.Any(), gomock.Any()).Return(&ports.Response{StatusCode: 200, Body: body}, nil)
package mocks

// Generate mocks for the port interfaces from internal/ports:
// Transport (Do), KeyValueStore (Get, Set, Remove), EventPublisher (Publish)
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/mmk-ui-client/internal/ports Transport,KeyValueStore,EventPublisher
