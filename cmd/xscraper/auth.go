package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"xscraper/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage X session credentials",
	Long: `Manage stored X session credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (scripted runs)

Never share your cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [handle]",
	Short: "Store X session cookies securely",
	Long: `Store X session cookies securely in the system keychain or encrypted file.

You will be prompted for:
  - X handle (if not provided)
  - Auth token (from the auth_token cookie)
  - CSRF token (from the ct0 cookie)
  - User Agent (optional, press Enter for default)

To get these values:
1. Log into X in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies > https://x.com
4. Find and copy the auth_token and ct0 values`,
	Example: `  # Interactive login
  xscraper auth login

  # Login with handle
  xscraper auth login myhandle`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [handle]",
	Short: "Remove stored credentials",
	Long: `Remove stored X session credentials.

If no handle is provided, you will be shown a list of stored accounts
to choose from. You can also remove all accounts at once.`,
	Example: `  # Interactive logout
  xscraper auth logout

  # Logout specific account
  xscraper auth logout myhandle`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored X accounts with sanitized credential information.`,
	Run:   runList,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials a run would use",
	Long: `Show where session credentials come from for the next run.

Checks the environment variables, the stored accounts, and reports the
account the default lookup resolves to.`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatalf("Failed to initialize credential manager: %v", err)
	}

	var handle string
	if len(args) > 0 {
		handle = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowCookieExtractionGuide()

	if !confirmYes(reader, "Ready to enter your cookies? (Y/n): ", true) {
		fmt.Println("\nRun 'xscraper auth login' when you're ready.")
		return
	}

	fmt.Println()

	if handle == "" {
		fmt.Print("🐦 X handle: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fatalf("Failed to read handle: %v", err)
		}
		handle = strings.TrimSpace(input)
	}
	handle = strings.TrimPrefix(handle, "@")

	if handle == "" {
		fatalf("Handle is required")
	}

	if existing, _ := manager.Retrieve(handle); existing != nil {
		prompt := fmt.Sprintf("\n⚠️  Account '%s' already exists. Update credentials? (y/N): ", handle)
		if !confirmYes(reader, prompt, false) {
			return
		}
	}

	fmt.Println("\n🔐 Enter your cookie values (they will be hidden as you type):")
	fmt.Println()

	authToken := promptToken(reader, "auth_token cookie value: ", func(v string) string {
		if len(v) != 40 || !isHexToken(v) {
			return "It should be exactly 40 hexadecimal characters.\n" +
				"   Example: 1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b"
		}
		return ""
	})

	csrfToken := promptToken(reader, "\nct0 cookie value: ", func(v string) string {
		if len(v) < 32 || !isHexToken(v) {
			return "It should be a hex string of at least 32 characters.\n" +
				"   Example: f0e1d2c3b4a5968778695a4b3c2d1e0f"
		}
		return ""
	})

	fmt.Print("\n\n🌐 User Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	fmt.Println("\n📋 Summary:")
	fmt.Printf("   Handle: %s\n", handle)
	fmt.Printf("   Auth Token: %s...%s (hidden)\n", authToken[:6], authToken[len(authToken)-4:])
	fmt.Printf("   CSRF Token: %s...%s (hidden)\n", csrfToken[:4], csrfToken[len(csrfToken)-4:])
	if userAgent != "" {
		fmt.Printf("   User Agent: %s\n", userAgent)
	}

	account := &auth.Account{
		Handle:       handle,
		AuthToken:    authToken,
		CSRFToken:    csrfToken,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	fmt.Println("\n💾 Storing credentials securely...")
	if err := manager.Store(account); err != nil {
		fatalf("Failed to store credentials: %v", err)
	}

	if accounts, _ := manager.List(); len(accounts) == 1 {
		fmt.Printf("✅ Set '%s' as default account\n", handle)
	}

	fmt.Println("\n🎉 Credentials stored successfully!")

	fmt.Println("\n🔒 Security Information:")
	fmt.Println("   Your credentials are encrypted and stored in:")
	fmt.Println("   • System keychain (when available)")
	fmt.Println("   • Encrypted file (fallback)")

	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Collect recent posts from any author feed:")
	fmt.Printf("   $ xscraper scrape <handle>\n")
	fmt.Println("\n   Example:")
	fmt.Printf("   $ xscraper scrape nasa --since 24h\n")
	fmt.Println("\n   Use specific account:")
	fmt.Printf("   $ xscraper scrape <handle> --account %s\n", handle)
	fmt.Println("\n   Show more options:")
	fmt.Printf("   $ xscraper scrape --help\n")
	fmt.Println("\n⚠️  Never share your cookies or config files!")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatalf("Failed to initialize credential manager: %v", err)
	}

	if len(args) > 0 {
		removeAccount(manager, strings.TrimPrefix(args[0], "@"))
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		fmt.Println("No stored accounts found")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(accounts) == 1 {
		handle := accounts[0].Handle
		if confirmYes(reader, fmt.Sprintf("Remove account '%s'? (y/N): ", handle), false) {
			removeAccount(manager, handle)
		}
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Handle)
	}
	fmt.Printf("  %d. Remove all accounts\n", len(accounts)+1)
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == 0:
		return
	case choice == len(accounts)+1:
		fmt.Print("Remove ALL accounts? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return
		}
		if err := manager.DeleteAll(); err != nil {
			fatalf("Failed to remove all accounts: %v", err)
		}
		fmt.Println("All accounts removed")
	case choice > 0 && choice <= len(accounts):
		removeAccount(manager, accounts[choice-1].Handle)
	default:
		fatalf("Invalid choice")
	}
}

func removeAccount(manager *auth.Manager, handle string) {
	if err := manager.Delete(handle); err != nil {
		fatalf("Failed to remove account: %v", err)
	}
	fmt.Println("Account removed:", handle)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatalf("Failed to initialize credential manager: %v", err)
	}

	accounts, err := manager.List()
	if err != nil {
		fatalf("Failed to list accounts: %v", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No stored accounts. Use 'xscraper auth login' to add an account.")
		return
	}

	fmt.Println("Stored Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Handle: %s\n", i+1, sanitized.Handle)
		fmt.Printf("   Auth Token: %s\n", sanitized.AuthToken)
		fmt.Printf("   CSRF Token: %s\n", sanitized.CSRFToken)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatalf("Failed to initialize credential manager: %v", err)
	}

	fmt.Println("Credential Status")
	fmt.Println()

	// Environment override wins for scripted runs
	envToken := os.Getenv("XSCRAPER_AUTH_TOKEN")
	envCSRF := os.Getenv("XSCRAPER_CSRF_TOKEN")
	switch {
	case envToken != "" && envCSRF != "":
		fmt.Println("✅ Environment: XSCRAPER_AUTH_TOKEN and XSCRAPER_CSRF_TOKEN are set")
	case envToken != "" || envCSRF != "":
		fmt.Println("⚠️  Environment: only one of XSCRAPER_AUTH_TOKEN / XSCRAPER_CSRF_TOKEN is set")
	default:
		fmt.Println("   Environment: not configured")
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		fmt.Println("   Stored accounts: none")
	} else {
		fmt.Printf("✅ Stored accounts: %d", len(accounts))
		fmt.Println()
		for _, account := range accounts {
			fmt.Printf("     - %s (updated %s)\n", account.Handle, account.LastModified.Format("2006-01-02"))
		}
	}

	fmt.Println()
	account, err := manager.RetrieveDefault()
	if err != nil {
		fmt.Println("❌ A run right now would fail: no usable credentials.")
		fmt.Println("   Run 'xscraper auth login' to store some.")
		os.Exit(1)
	}
	if envToken != "" && account.AuthToken == envToken {
		fmt.Println("A run right now would use the environment credentials.")
	} else {
		fmt.Printf("A run right now would use the '%s' account.\n", account.Handle)
	}
}

// promptToken reads a secret until validate accepts it. validate returns
// an empty string for good input and a hint line otherwise.
func promptToken(reader *bufio.Reader, label string, validate func(string) string) string {
	for {
		fmt.Print(label)
		value, err := readPassword()
		if err != nil {
			fatalf("Failed to read value: %v", err)
		}

		hint := validate(value)
		if hint == "" {
			return value
		}

		fmt.Println("\n❌ That doesn't look right.")
		fmt.Println("   " + hint)
		if !confirmYes(reader, "\nTry again? (Y/n): ", true) {
			os.Exit(1)
		}
	}
}

// confirmYes asks a yes/no question. defaultYes controls what a bare
// Enter means.
func confirmYes(reader *bufio.Reader, prompt string, defaultYes bool) bool {
	fmt.Print(prompt)
	input, _ := reader.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(input))
	if answer == "" {
		return defaultYes
	}
	if defaultYes {
		return answer != "n" && answer != "no"
	}
	return answer == "y" || answer == "yes"
}

// readPassword reads a secret from stdin without echoing, falling back
// to plain input when stdin is not a terminal
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// isHexToken reports whether s is non-empty and entirely hex digits.
func isHexToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
