package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/proofpay/internal/common"
)

// Register creates a new account interactively.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := GetPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword("Confirm password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.client.SignUp(ctx, email, string(password), string(confirm)); err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Account created. You can now log in.")
	return nil
}

// Login authenticates interactively and keeps the session open.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := GetPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	a.email = email
	fmt.Println("Logged in as", email)
	return nil
}

// Status prints the server-side session state.
func (a *App) Status(ctx context.Context) error {
	status, err := a.client.Session(ctx)
	if err != nil {
		fmt.Println("Status check failed:", err)
		return err
	}

	fmt.Println("Logged in as:", status.Email)
	if status.IDVerified {
		fmt.Println("Identity: verified")
	} else {
		fmt.Println("Identity: not verified")
	}
	return nil
}

// Logout ends the session and releases the server-side wallet.
func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return err
	}

	a.email = ""
	fmt.Println("Logged out.")
	return nil
}
