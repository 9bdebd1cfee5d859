package application

import (
	"fmt"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

const (
	DefaultPointURL  = "https://pioneer.particle.network/en/point"
	DefaultSignupURL = "https://pioneer.particle.network/en/signup"
	DefaultFeedURL   = "https://pioneer-api.particle.network/users/point_records"

	widgetFrame = ".particle-pwe-iframe"

	// zeroEstimate is what the send form shows when it failed to price the amount.
	zeroEstimate = "≈0 USD"
)

// WidgetSelectors locates the wallet widget controls. Everything except
// EntryButton lives inside the widget iframe.
type WidgetSelectors struct {
	EntryButton      ports.Locator
	IndexPage        ports.Locator
	SendPage         ports.Locator
	SendLink         ports.Locator
	NetworkAvatar    ports.Locator
	NetworkSwitcher  ports.Locator
	SwitcherModal    ports.Locator
	AddressField     ports.Locator
	AmountField      ports.Locator
	UsdEstimate      ports.Locator
	SendButton       ports.Locator
	FeeModal         ports.Locator
	FeeTokenName     ports.Locator
	FeeAmount        ports.Locator
	FeeBalance       ports.Locator
	FeeSendButton    ports.Locator
	SuccessIndicator ports.Locator
	SuccessClose     ports.Locator
	// ChainItemPattern is formatted with the network id.
	ChainItemPattern string
	Frame            string
}

func DefaultWidgetSelectors() WidgetSelectors {
	in := func(l ports.Locator) ports.Locator { return l.InFrame(widgetFrame) }

	return WidgetSelectors{
		EntryButton:      ports.CSS(".particle-pwe-btn"),
		IndexPage:        in(ports.CSS("body._page_index")),
		SendPage:         in(ports.CSS("body._page_send")),
		SendLink:         in(ports.CSS(".mini-link-content:has(a[href*=send])")),
		NetworkAvatar:    in(ports.CSS(".network.type.m-network > .ant-image")),
		NetworkSwitcher:  in(ports.CSS(".network.type.m-network")),
		SwitcherModal:    in(ports.CSS(".swaitch-chain-modal.ant-drawer-open")),
		AddressField:     in(ports.CSS("textarea[id=send_to]")),
		AmountField:      in(ports.CSS("input[id=send_amount]")),
		UsdEstimate:      in(ports.CSS(".usd-content")),
		SendButton:       in(ports.XPath(`//*[@id="send"]/div[4]/div/div/div/div/button`)),
		FeeModal:         in(ports.CSS(".erc4337-transaction-container")),
		FeeTokenName:     in(ports.CSS(".gas-fee-item[data-selected=true] .fee-name")),
		FeeAmount:        in(ports.CSS(".gas-fee-item[data-selected=true] .gas-fee")),
		FeeBalance:       in(ports.CSS(".gas-fee-item[data-selected=true] .token-balance")),
		FeeSendButton:    in(ports.XPath("//html/body/div[4]/div/div[3]/div/div/div[2]/div/div[2]/button")),
		SuccessIndicator: in(ports.Text("View on block explorer")),
		SuccessClose:     in(ports.XPath("//html/body/div[5]/div/div[3]/div/div/div[1]/div[2]/span")),
		ChainItemPattern: `.item[data-chainid="%s"]`,
		Frame:            widgetFrame,
	}
}

func (s WidgetSelectors) ChainItem(networkID string) ports.Locator {
	return ports.CSS(fmt.Sprintf(s.ChainItemPattern, networkID)).InFrame(s.Frame)
}
