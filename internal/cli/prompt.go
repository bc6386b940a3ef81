package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// promptString prompts for a string value, returning the default when
// the user just presses Enter.
func promptString(reader *bufio.Reader, prompt, current string) string {
	fmt.Printf("%s [%s]: ", prompt, current)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response == "" {
		return current
	}
	return response
}

// promptInt prompts for an integer value, keeping the current one on
// blank or unparseable input.
func promptInt(reader *bufio.Reader, prompt string, current int) int {
	fmt.Printf("%s [%d]: ", prompt, current)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response == "" {
		return current
	}
	n, err := strconv.Atoi(response)
	if err != nil || n <= 0 {
		fmt.Println(styleWarning.Render("  not a positive number, keeping current value"))
		return current
	}
	return n
}

// promptYesNoWithCurrent prompts for a yes/no value showing the current value.
func promptYesNoWithCurrent(reader *bufio.Reader, prompt string, current bool) bool {
	currentStr := "no"
	if current {
		currentStr = "yes"
	}

	fmt.Printf("  %s [%s]: ", prompt, currentStr)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return current
	}
	return response == "y" || response == "yes"
}
