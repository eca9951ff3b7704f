package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.email != "" {
		return fmt.Sprintf("(%s)", a.email)
	}
	return ""
}

// Root runs the command loop until EOF or "exit".
func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to proofpay CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("pp %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: status, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, exit")
			}

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "status":
			a.Status(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", parts[0])
		}
	}
}
