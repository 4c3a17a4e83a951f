// Package mocks holds testify mocks for the relayer's core interfaces.
package mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/crosslane/relayer"
	"github.com/crosslane/relayer/protocol"
)

// MockVerifier is a mock implementation of relayer.OffchainVerifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Address() protocol.UnknownAddress {
	args := m.Called()
	//nolint
	return args.Get(0).(protocol.UnknownAddress)
}

func (m *MockVerifier) GetOffchainVerifyInfo(ctx context.Context, messageBytes []byte) error {
	args := m.Called(ctx, messageBytes)
	return args.Error(0)
}

// MockVerifierProvider is a mock implementation of relayer.VerifierProvider.
type MockVerifierProvider struct {
	mock.Mock
}

func (m *MockVerifierProvider) GetVerifier(
	ctx context.Context, address protocol.UnknownAddress,
) (relayer.OffchainVerifier, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	//nolint
	return args.Get(0).(relayer.OffchainVerifier), args.Error(1)
}

// MockContractCaller is a mock implementation of bind.ContractCaller.
type MockContractCaller struct {
	mock.Mock
}

func (m *MockContractCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, contract, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	//nolint
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockContractCaller) CallContract(
	ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int,
) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	//nolint
	return args.Get(0).([]byte), args.Error(1)
}
