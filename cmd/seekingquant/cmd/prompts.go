package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// selectAccount asks which managed account to trade when the gateway
// offers several and none is configured.
func selectAccount(accounts []string) (string, error) {
	var selected string
	prompt := &survey.Select{
		Message: "Select the account to trade:",
		Options: accounts,
		Default: accounts[0],
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", fmt.Errorf("account selection: %w", err)
	}
	return selected, nil
}

// confirmBatch asks before any orders leave the machine. --yes skips it.
func confirmBatch(message string) (bool, error) {
	if yesFlag {
		return true, nil
	}
	confirmed := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	return confirmed, nil
}
