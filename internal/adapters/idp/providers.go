package idp

import (
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

const (
	providerButtons = "//html/body/div[1]/div[1]/div/div[1]/div[3]/div[2]"

	discordURL = "https://discord.com/"
)

type Twitter struct{}

func (Twitter) Steps(cfg Config, credential domain.Credential) []Step {
	button := ports.XPath(providerButtons + "/button[2]")
	username := ports.CSS("input[autocomplete=username]")
	password := ports.CSS("input[autocomplete=current-password]")
	authorize := ports.Text("Authorize app")

	return []Step{
		navigate(cfg.SignupURL),
		expect("X login button", button, 0),
		click("X login button", button),
		expect("username field", username, slowTimeout),
		typeSlowly("type username", username, credential.Account.Identifier),
		click("next", ports.Text("Next")),
		expect("password field", password, 0),
		typeSlowly("type password", password, credential.Secret),
		click("log in", ports.Text("Log in")),
		expect("authorize app", authorize, slowTimeout),
		click("authorize app", authorize),
		waitURL(cfg.PlatformURL),
	}
}

type Discord struct{}

func (Discord) Steps(cfg Config, credential domain.Credential) []Step {
	button := ports.XPath(providerButtons + "/button[5]")
	login := ports.Text("Log In")
	authorize := ports.Text("Authorize")

	return []Step{
		navigate(cfg.SignupURL),
		expect("Discord login button", button, 0),
		click("Discord login button", button),
		waitURL(discordURL),
		expect("log in button", login, 0),
		fill("email", ports.CSS("input[name=email]"), credential.Account.Identifier),
		fill("password", ports.CSS("input[name=password]"), credential.Secret),
		click("log in", login),
		expect("authorize", authorize, slowTimeout),
		click("authorize", authorize),
		waitURL(cfg.PlatformURL),
	}
}
