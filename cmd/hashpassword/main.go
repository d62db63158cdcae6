package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Freeeeeet/exam_booking_bot/internal/httpapi"
	"golang.org/x/term"
)

// Печатает argon2id хеш для API_PASSWORD_HASH
func main() {
	password, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка чтения пароля: %v\n", err)
		os.Exit(1)
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "Пароль не может быть пустым")
		os.Exit(1)
	}

	hash, err := httpapi.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка хеширования: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// readPassword читает пароль без эха, либо строку из stdin если это не терминал
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Ripeti: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
