package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/shopfolio/storefront/internal/auth"
	"github.com/shopfolio/storefront/internal/cart"
	"github.com/shopfolio/storefront/internal/catalog"
	"github.com/shopfolio/storefront/internal/checkout"
	"github.com/shopfolio/storefront/internal/orders"
	"github.com/shopfolio/storefront/pkg/config"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
	"github.com/shopfolio/storefront/pkg/kv"
	"github.com/shopfolio/storefront/pkg/logger"
)

const usage = `usage: storefront <command> [args]

commands:
  browse [category]          list products, optionally by category
  product <id>               show one product
  categories                 list categories
  add <id> [quantity]        add a product to the cart
  remove <id>                remove a product from the cart
  quantity <id> <n>          set a line's quantity (0 removes it)
  cart                       show the cart with totals
  clear                      empty the cart
  checkout                   start the hosted checkout flow
  orders                     list recorded orders (requires -uid)
  signup | signin            create or authenticate an account
`

type app struct {
	cfg     *config.Config
	logg    *logger.Logger
	store   kv.Store
	closeKV func() error
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	a := &app{cfg: cfg, logg: logg}
	a.store, a.closeKV = openStore(cfg, logg)
	defer func() {
		if a.closeKV != nil {
			if err := a.closeKV(); err != nil {
				logg.Error(context.Background(), "error closing state store", err)
			}
		}
	}()

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		report(err)
		os.Exit(1)
	}
}

// openStore prefers Redis when configured and falls back to process-local
// memory; the cart then lives only for this invocation.
func openStore(cfg *config.Config, logg *logger.Logger) (kv.Store, func() error) {
	if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return kv.NewMemoryStore(), nil
	}
	redisStore, err := kv.NewRedisStore(context.Background(), cfg.Redis)
	if err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()),
			"redis unavailable, falling back to in-memory cart")
		return kv.NewMemoryStore(), nil
	}
	return redisStore, redisStore.Close
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "browse":
		return a.browse(ctx, args)
	case "product":
		return a.product(ctx, args)
	case "categories":
		return a.categories(ctx)
	case "add":
		return a.add(ctx, args)
	case "remove":
		return a.remove(ctx, args)
	case "quantity":
		return a.quantity(ctx, args)
	case "cart":
		return a.showCart(ctx)
	case "clear":
		return a.clearCart(ctx)
	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		return a.listOrders(ctx, args)
	case "signup":
		return a.authenticate(ctx, args, true)
	case "signin":
		return a.authenticate(ctx, args, false)
	default:
		fmt.Fprint(os.Stderr, usage)
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown command %q", command))
	}
}

func (a *app) browse(ctx context.Context, args []string) error {
	client := catalog.NewClient(a.cfg.Catalog)

	var products []catalog.Product
	var err error
	if len(args) > 0 {
		products, err = client.ProductsByCategory(ctx, args[0])
	} else {
		products, err = client.Products(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRICE\tCATEGORY\tTITLE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t$%s\t%s\t%s\n", p.ID, p.Price.StringFixed(2), p.Category, p.Title)
	}
	return w.Flush()
}

func (a *app) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: storefront product <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id must be a number")
	}

	p, err := catalog.NewClient(a.cfg.Catalog).ProductByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n%s\n\nPrice: $%s\nCategory: %s\nRating: %.1f (%d reviews)\n",
		p.Title, p.Description, p.Price.StringFixed(2), p.Category, p.Rating.Rate, p.Rating.Count)
	return nil
}

func (a *app) categories(ctx context.Context) error {
	categories, err := catalog.NewClient(a.cfg.Catalog).Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func (a *app) openCart(ctx context.Context) *cart.Store {
	store := cart.NewStore(a.store, "local", a.logg)
	store.Initialize(ctx)
	return store
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: storefront add <id> [quantity]")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id must be a number")
	}
	quantity := 1
	if len(args) == 2 {
		quantity, err = strconv.Atoi(args[1])
		if err != nil || quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive number")
		}
	}

	product, err := catalog.NewClient(a.cfg.Catalog).ProductByID(ctx, id)
	if err != nil {
		return err
	}

	cartStore := a.openCart(ctx)
	defer cartStore.Close()

	cartStore.AddItem(product.CartProduct(), quantity)
	fmt.Printf("Added %d x %s\n", quantity, product.Title)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: storefront remove <id>")
	}

	cartStore := a.openCart(ctx)
	defer cartStore.Close()

	cartStore.RemoveItem(args[0])
	fmt.Println("Removed.")
	return nil
}

func (a *app) quantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: storefront quantity <id> <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a number")
	}

	cartStore := a.openCart(ctx)
	defer cartStore.Close()

	cartStore.UpdateQuantity(args[0], n)
	fmt.Println("Updated.")
	return nil
}

func (a *app) showCart(ctx context.Context) error {
	cartStore := a.openCart(ctx)
	defer cartStore.Close()

	items := cartStore.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "QTY\tPRICE\tTITLE")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t$%s\t%s\n", item.Quantity, item.Price.StringFixed(2), item.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	subtotal := cartStore.Total()
	shipping, err := a.shippingFor(subtotal)
	if err != nil {
		return err
	}

	fmt.Printf("\nSubtotal: $%s\n", subtotal.StringFixed(2))
	if shipping.IsZero() {
		fmt.Println("Shipping: free")
	} else {
		fmt.Printf("Shipping: $%s\n", shipping.StringFixed(2))
	}
	fmt.Printf("Total:    $%s (%d items)\n", subtotal.Add(shipping).StringFixed(2), cartStore.TotalItems())
	return nil
}

func (a *app) clearCart(ctx context.Context) error {
	cartStore := a.openCart(ctx)
	defer cartStore.Close()

	cartStore.Clear()
	fmt.Println("Cleared.")
	return nil
}

func (a *app) shippingFor(subtotal decimal.Decimal) (decimal.Decimal, error) {
	fee, err := a.cfg.Checkout.ShippingFeeAmount()
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid shipping fee")
	}
	freeAbove, err := a.cfg.Checkout.FreeShippingThreshold()
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid free-shipping threshold")
	}
	return checkout.ShippingFor(subtotal, fee, freeAbove), nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	address := fs.String("address", "", "street address")
	city := fs.String("city", "", "city")
	zip := fs.String("zip", "", "zip code (optional)")
	uid := fs.String("uid", "", "authenticated user id (optional)")
	if err := fs.Parse(args); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse checkout flags")
	}

	fee, err := a.cfg.Checkout.ShippingFeeAmount()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid shipping fee")
	}
	freeAbove, err := a.cfg.Checkout.FreeShippingThreshold()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid free-shipping threshold")
	}

	cartStore := a.openCart(ctx)
	defer cartStore.Close()

	in := bufio.NewReader(os.Stdin)
	flow, err := checkout.NewFlow(checkout.FlowParams{
		Client:      checkout.NewClient(a.cfg.Checkout, a.logg),
		Cart:        cartStore,
		Browser:     &terminalBrowser{in: in, out: os.Stdout},
		Confirm:     &terminalConfirmer{in: in, out: os.Stdout},
		Recorder:    orders.NewRepository(a.store),
		Logger:      a.logg,
		ShippingFee: fee,
		FreeAbove:   freeAbove,
	})
	if err != nil {
		return err
	}

	form := checkout.Form{
		FullName: *name,
		Email:    *email,
		Address:  *address,
		City:     *city,
		ZipCode:  *zip,
	}

	result, err := flow.Run(ctx, form, *uid)
	if err != nil {
		return err
	}

	switch result.State {
	case checkout.StateResolvedConfirmed:
		fmt.Println("Payment confirmed. Thanks for your order!")
		if result.Order != nil {
			fmt.Printf("Order %s recorded, total $%s.\n", result.Order.ID, result.Order.Total.StringFixed(2))
		}
	case checkout.StateResolvedCancelled:
		fmt.Println("Checkout cancelled. Your cart is unchanged.")
	default:
		fmt.Println("We could not verify the payment. Your cart is unchanged; if you were charged, the order will be reconciled.")
	}
	return nil
}

func (a *app) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	uid := fs.String("uid", "", "authenticated user id")
	if err := fs.Parse(args); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse orders flags")
	}
	if *uid == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "orders requires -uid")
	}

	list, err := orders.NewRepository(a.store).ListByUser(ctx, *uid)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tPLACED\tITEMS\tTOTAL")
	for _, order := range list {
		count := 0
		for _, item := range order.Items {
			count += item.Quantity
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t$%s\n",
			order.ID, order.CreatedAt.Format("2006-01-02 15:04"), count, order.Total.StringFixed(2))
	}
	return w.Flush()
}

func (a *app) authenticate(ctx context.Context, args []string, signUp bool) error {
	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse auth flags")
	}

	client := auth.NewClient(a.cfg.Auth)

	var user *auth.User
	var err error
	if signUp {
		user, err = client.SignUp(ctx, *email, *password)
	} else {
		user, err = client.SignIn(ctx, *email, *password)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\nuid: %s\n", user.Email, user.UID)
	fmt.Println("Pass -uid to checkout/orders to record orders under this account.")
	return nil
}

func report(err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %s\n", typed.Message())
	if details := typed.Details(); details != nil {
		if fields, ok := details.(map[string]string); ok {
			for field, msg := range fields {
				fmt.Fprintf(os.Stderr, "  %s %s\n", field, msg)
			}
		}
	}
}
