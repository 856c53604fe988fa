package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// credentials fills in whatever the flags left empty by prompting. The
// password is read without echo when stdin is a terminal.
func credentials(in io.Reader, prompt io.Writer, email, password string) (string, string, error) {
	reader := bufio.NewReader(in)

	if strings.TrimSpace(email) == "" {
		fmt.Fprint(prompt, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	if password == "" {
		fmt.Fprint(prompt, "Password: ")
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			data, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompt)
			if err != nil {
				return "", "", fmt.Errorf("read password: %w", err)
			}
			password = string(data)
		} else {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return "", "", fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}

	return email, password, nil
}
