package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	SepoliaChainID     = "11155111"
	SepoliaNetworkName = "Ethereum Sepolia"

	DefaultDestination = "0xe2f35B11c5B54DbB2176D055E5531E41e7721457"
	DefaultAmount      = "0.000001"
	DefaultFeeToken    = "USDG"
)

type Network struct {
	ID   string
	Name string
}

type TransferSpec struct {
	Destination string
	Amount      string
	Network     Network
	// FeeToken is the token the fee review panel must select to pay gas.
	FeeToken string
}

func DefaultTransferSpec() TransferSpec {
	return TransferSpec{
		Destination: DefaultDestination,
		Amount:      DefaultAmount,
		Network:     Network{ID: SepoliaChainID, Name: SepoliaNetworkName},
		FeeToken:    DefaultFeeToken,
	}
}

func (s TransferSpec) Validate() error {
	if !common.IsHexAddress(s.Destination) {
		return fmt.Errorf("%w: destination %q is not a hex address", ErrInvalidTransferSpec, s.Destination)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(s.Amount))
	if err != nil {
		return fmt.Errorf("%w: amount %q: %w", ErrInvalidTransferSpec, s.Amount, err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidTransferSpec, s.Amount)
	}

	if strings.TrimSpace(s.Network.ID) == "" {
		return fmt.Errorf("%w: network id is empty", ErrInvalidTransferSpec)
	}
	if strings.TrimSpace(s.Network.Name) == "" {
		return fmt.Errorf("%w: network %s has no display name", ErrInvalidTransferSpec, s.Network.ID)
	}
	if strings.TrimSpace(s.FeeToken) == "" {
		return fmt.Errorf("%w: fee token is empty", ErrInvalidTransferSpec)
	}

	return nil
}

// ChecksumDestination returns the EIP-55 form of the destination address.
func (s TransferSpec) ChecksumDestination() string {
	return common.HexToAddress(s.Destination).Hex()
}
