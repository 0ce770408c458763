// shopctl is a CLI for exercising the storefront gateway.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	shopctl login -gateway URL -email E -password P
//	shopctl products [-sort price] [-page N]
//	shopctl cart | add -product ID | update -product ID -count N | remove -product ID | empty
//	shopctl wishlist | toggle -product ID
//	shopctl orders
//	shopctl checkout -cart ID -method cash|online -details D -city C -phone P
//
// The session cookie from login is stored in ~/.shopctl-session and sent
// on subsequent commands.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"storefront-gateway/internal/checkout"
	"storefront-gateway/internal/model"
	"storefront-gateway/internal/storefront"
)

// Global flags (apply to all commands)
var (
	gatewayURL string
	quiet      bool
	noColor    bool
)

// ANSI color codes
var (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorCyan, colorGray = "", "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "login":
		runLogin(args)
	case "logout":
		runLogout(args)
	case "products":
		runProducts(args)
	case "cart":
		runCart(args)
	case "add":
		runAdd(args)
	case "update":
		runUpdate(args)
	case "remove":
		runRemove(args)
	case "empty":
		runEmpty(args)
	case "wishlist":
		runWishlist(args)
	case "toggle":
		runToggle(args)
	case "orders":
		runOrders(args)
	case "checkout":
		runCheckout(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shopctl - storefront gateway test tool

Usage:
  shopctl <command> [options]

Commands:
  login     Sign in and store the session cookie
  logout    Sign out and drop the stored session
  products  List the product catalog
  cart      Show the cart
  add       Add a product to the cart
  update    Set the quantity of a cart line
  remove    Remove a product from the cart
  empty     Clear the cart
  wishlist  Show the wishlist
  toggle    Toggle a product on the wishlist
  orders    Show order history
  checkout  Place an order (cash or online)

Examples:
  shopctl login -email sara@example.com -password secret123
  shopctl add -product 6428ebc6dc1175abc65ca0b9
  shopctl update -product 6428ebc6dc1175abc65ca0b9 -count 3
  shopctl checkout -cart "$CART" -method cash -details "12 Main St" -city Cairo -phone 01234567890

Run 'shopctl <command> -h' for command-specific options.
`)
}

// =============================================================================
// SESSION FILE
// =============================================================================

func sessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shopctl-session"
	}
	return filepath.Join(home, ".shopctl-session")
}

type storedSession struct {
	Gateway string `json:"gateway"`
	Cookie  string `json:"cookie"`
}

func saveSession(gateway, cookie string) error {
	data, err := json.Marshal(storedSession{Gateway: gateway, Cookie: cookie})
	if err != nil {
		return err
	}
	return os.WriteFile(sessionFile(), data, 0600)
}

func loadSession() (*storedSession, error) {
	data, err := os.ReadFile(sessionFile())
	if err != nil {
		return nil, err
	}
	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// newClient builds a storefront client, seeding the cookie jar from the
// stored session when one exists.
func newClient() *storefront.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		fatal("creating cookie jar: %v", err)
	}

	if stored, err := loadSession(); err == nil {
		if gatewayURL == "" || gatewayURL == stored.Gateway {
			gatewayURL = stored.Gateway
			u, err := url.Parse(stored.Gateway)
			if err == nil {
				jar.SetCookies(u, []*http.Cookie{{
					Name:  "storefront_session",
					Value: stored.Cookie,
					Path:  "/",
				}})
			}
		}
	}
	if gatewayURL == "" {
		gatewayURL = "http://localhost:8080"
	}

	c, err := storefront.New(storefront.Config{
		BaseURL:    gatewayURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second, Jar: jar},
		Notify: func(productID string, err error) {
			printError("wishlist toggle reverted for %s: %v", productID, err)
		},
	})
	if err != nil {
		fatal("creating client: %v", err)
	}
	return c
}

func globalFlags(fs *flag.FlagSet) {
	fs.StringVar(&gatewayURL, "gateway", "", "Gateway base URL (default: stored session or http://localhost:8080)")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func parse(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func runLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	globalFlags(fs)
	var email, password string
	fs.StringVar(&email, "email", "", "Account email (required)")
	fs.StringVar(&password, "password", "", "Account password (required)")
	parse(fs, args)

	if email == "" || password == "" {
		fs.Usage()
		os.Exit(1)
	}

	jar, _ := cookiejar.New(nil)
	httpClient := &http.Client{Timeout: 30 * time.Second, Jar: jar}
	if gatewayURL == "" {
		gatewayURL = "http://localhost:8080"
	}
	c, err := storefront.New(storefront.Config{BaseURL: gatewayURL, HTTPClient: httpClient})
	if err != nil {
		fatal("creating client: %v", err)
	}

	user, err := c.SignIn(context.Background(), email, password)
	if err != nil {
		fatal("login failed: %v", err)
	}

	u, _ := url.Parse(gatewayURL)
	var cookie string
	for _, ck := range jar.Cookies(u) {
		if ck.Name == "storefront_session" {
			cookie = ck.Value
		}
	}
	if cookie == "" {
		fatal("gateway did not set a session cookie")
	}
	if err := saveSession(gatewayURL, cookie); err != nil {
		fatal("saving session: %v", err)
	}

	printSuccess("Signed in as %s%s%s", colorCyan, user.Name, colorReset)
}

func runLogout(args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	c := newClient()
	if err := c.SignOut(context.Background()); err != nil {
		printError("sign out: %v", err)
	}
	os.Remove(sessionFile())
	printSuccess("Signed out")
}

func runProducts(args []string) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	globalFlags(fs)
	var sort string
	var page int
	fs.StringVar(&sort, "sort", "", "Sort key, e.g. price or -price")
	fs.IntVar(&page, "page", 0, "Page number")
	parse(fs, args)

	query := url.Values{}
	if sort != "" {
		query.Set("sort", sort)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	products, err := newClient().ListProducts(context.Background(), query)
	if err != nil {
		fatal("listing products: %v", err)
	}

	for _, p := range products {
		if quiet {
			fmt.Println(p.ID)
			continue
		}
		fmt.Printf("  %s%s%s  %s  %s%.2f%s\n", colorGray, p.ID, colorReset, p.Title, colorGreen, p.Price, colorReset)
	}
}

func runCart(args []string) {
	fs := flag.NewFlagSet("cart", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	cart, err := newClient().GetCart(context.Background())
	if err != nil {
		fatal("fetching cart: %v", err)
	}

	if quiet {
		fmt.Println(cart.ID)
		return
	}
	if cart.IsEmpty() {
		printInfo("Cart is empty")
		return
	}

	fmt.Printf("  Cart: %s%s%s\n", colorCyan, cart.ID, colorReset)
	for _, line := range cart.Products {
		fmt.Printf("    %dx %s  %s%.2f%s\n", line.Count, lineTitle(line), colorGreen, line.Price, colorReset)
	}

	subtotal := checkout.CartSubtotal(cart)
	shipping := checkout.ShippingCost(subtotal)
	fmt.Printf("  Subtotal: %s  Shipping: %s  Total: %s%s%s\n",
		subtotal, shipping, colorGreen, checkout.OrderTotal(subtotal), colorReset)
	if shipping.IsPositive() {
		fmt.Printf("  %sFree shipping at %s (%s%% there)%s\n",
			colorGray, checkout.FreeShippingThreshold,
			checkout.FreeShippingProgress(subtotal).Mul(hundred).Round(0), colorReset)
	}
}

func lineTitle(line model.CartLine) string {
	if line.Product.Title != "" {
		return line.Product.Title
	}
	return line.Product.ID
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	globalFlags(fs)
	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	parse(fs, args)

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	if err := newClient().AddToCart(context.Background(), productID); err != nil {
		fatal("adding to cart: %v", err)
	}
	printSuccess("Added %s", productID)
}

func runUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	globalFlags(fs)
	var productID string
	var count int
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.IntVar(&count, "count", 1, "New quantity (0 removes the line)")
	parse(fs, args)

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	if err := newClient().UpdateCartLine(context.Background(), productID, productID, count); err != nil {
		fatal("updating cart: %v", err)
	}
	printSuccess("Set %s to %d", productID, count)
}

func runRemove(args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	globalFlags(fs)
	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	parse(fs, args)

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	if err := newClient().RemoveCartLine(context.Background(), productID, productID); err != nil {
		fatal("removing from cart: %v", err)
	}
	printSuccess("Removed %s", productID)
}

func runEmpty(args []string) {
	fs := flag.NewFlagSet("empty", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	if err := newClient().EmptyCart(context.Background()); err != nil {
		fatal("emptying cart: %v", err)
	}
	printSuccess("Cart emptied")
}

func runWishlist(args []string) {
	fs := flag.NewFlagSet("wishlist", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	list, err := newClient().GetWishlist(context.Background())
	if err != nil {
		fatal("fetching wishlist: %v", err)
	}

	if len(list) == 0 && !quiet {
		printInfo("Wishlist is empty")
		return
	}
	for _, p := range list {
		if quiet {
			fmt.Println(p.ID)
			continue
		}
		fmt.Printf("  %s%s%s  %s\n", colorGray, p.ID, colorReset, p.Title)
	}
}

func runToggle(args []string) {
	fs := flag.NewFlagSet("toggle", flag.ExitOnError)
	globalFlags(fs)
	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	parse(fs, args)

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	c := newClient()
	// Seed from the server so the toggle direction is right.
	if _, err := c.GetWishlist(context.Background()); err != nil {
		fatal("fetching wishlist: %v", err)
	}

	wished, err := c.Wishlist.Toggle(context.Background(), productID)
	if err != nil {
		fatal("toggling wishlist: %v", err)
	}
	if wished {
		printSuccess("Added %s to wishlist", productID)
	} else {
		printSuccess("Removed %s from wishlist", productID)
	}
}

func runOrders(args []string) {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	orders, err := newClient().ListOrders(context.Background())
	if err != nil {
		fatal("fetching orders: %v", err)
	}

	if len(orders) == 0 && !quiet {
		printInfo("No orders yet")
		return
	}
	for _, o := range orders {
		if quiet {
			fmt.Println(o.ID)
			continue
		}
		status := "placed"
		if o.IsDelivered {
			status = "delivered"
		} else if o.IsPaid {
			status = "paid"
		}
		fmt.Printf("  %s%s%s  %s%.2f%s  %s\n",
			colorGray, o.ID, colorReset, colorGreen, o.TotalOrderPrice, colorReset, status)
	}
}

func runCheckout(args []string) {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	globalFlags(fs)
	var cartID, method, details, city, phone string
	fs.StringVar(&cartID, "cart", "", "Cart ID (required, from 'shopctl cart -q')")
	fs.StringVar(&method, "method", "cash", "Payment method: cash or online")
	fs.StringVar(&details, "details", "", "Street address (required)")
	fs.StringVar(&city, "city", "", "City (required)")
	fs.StringVar(&phone, "phone", "", "Phone, digits only (required)")
	parse(fs, args)

	if cartID == "" {
		fs.Usage()
		os.Exit(1)
	}

	c := newClient()
	flow := c.NewCheckout()
	err := flow.Select(checkout.PaymentMethod(method), model.ShippingAddress{
		Details: details,
		City:    city,
		Phone:   phone,
	})
	if err != nil {
		fatal("checkout: %v", err)
	}

	if err := flow.Submit(context.Background(), cartID); err != nil {
		fatal("checkout: %v", err)
	}

	if redirect := flow.RedirectURL(); redirect != "" {
		printSuccess("Payment session created")
		fmt.Printf("  Pay at: %s%s%s\n", colorCyan, redirect, colorReset)
	} else {
		printSuccess("Order placed, pay on delivery")
	}
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

func printSuccess(format string, args ...any) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printError(format string, args ...any) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
