package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

// Prompt is shown before reading the MFA code.
const Prompt = "Please enter your MFA OTP: "

// ReadCode prints Prompt to out and reads one line from in. When in is a
// terminal the code is read without echo.
func ReadCode(in io.Reader, out io.Writer) (string, error) {
	if _, err := fmt.Fprint(out, Prompt); err != nil {
		return "", errors.NewError("readCode", err)
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", errors.NewError("readCode", err)
		}
		return validCode(string(raw))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.NewError("readCode", err)
	}
	return validCode(line)
}

func validCode(s string) (string, error) {
	code := strings.TrimSpace(s)
	if code == "" {
		return "", errors.NewError("readCode", errors.ErrInvalidInput).
			WithMessage("no mfa code entered")
	}
	return code, nil
}
