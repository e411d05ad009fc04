package mocks

//go:generate go run github.com/golang/mock/mockgen -package transportmock -destination transportmock/transport_mock.go github.com/dshills/codeinsights/internal/bitbucket Transport
