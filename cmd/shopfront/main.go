package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/vinkj/autoshop/internal/platform/bootstrap"
	"github.com/vinkj/autoshop/internal/platform/configloader"
	"github.com/vinkj/autoshop/internal/shopfront/api"
	"github.com/vinkj/autoshop/internal/shopfront/cart"
	cartstore "github.com/vinkj/autoshop/internal/shopfront/cart/store"
	"github.com/vinkj/autoshop/internal/shopfront/checkout"
	"github.com/vinkj/autoshop/internal/shopfront/config"
	"github.com/vinkj/autoshop/internal/shopfront/view"
)

const appName = "shopfront"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](appName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	shopCart, err := cart.New(cartstore.NewFileStore(cfg.Cart.File, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	renderer := view.NewRenderer(os.Stdout)
	shopCart.OnChange(renderer.Sync())

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.GalleryTimeout)

	session := &session{
		cart:     shopCart,
		client:   client,
		renderer: renderer,
		logger:   logger,
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
	}
	return session.loop(ctx)
}

// session holds the interactive state of one storefront run. Products are
// cached from the last listing so cart commands can reference them by ID.
type session struct {
	cart     *cart.Cart
	client   *api.Client
	renderer *view.Renderer
	logger   *slog.Logger
	in       *bufio.Scanner
	out      *os.File

	products map[int64]api.Product
	services map[int64]api.Service
}

func (s *session) loop(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to the auto shop. Type 'help' for commands.")
	s.render()

	for {
		fmt.Fprint(s.out, "> ")
		line, ok := s.readLine(ctx)
		if !ok {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			s.printHelp()
		case "products":
			s.listProducts(ctx)
		case "services":
			s.listServices(ctx)
		case "gallery":
			s.listGallery(ctx)
		case "add":
			s.addToCart(ctx, fields[1:])
		case "remove":
			s.removeFromCart(fields[1:])
		case "qty":
			s.adjustQuantity(fields[1:])
		case "cart":
			s.render()
		case "clear":
			s.cart.Clear()
		case "checkout":
			s.checkout(ctx)
		case "book":
			s.book(ctx, fields[1:])
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for commands.\n", fields[0])
		}
	}
}

func (s *session) printHelp() {
	fmt.Fprint(s.out, `Commands:
  products             list products
  services             list services
  gallery              list gallery images
  add <id> [qty]       add a product to the cart
  remove <id>          remove a product from the cart
  qty <id> <delta>     adjust a cart line quantity, e.g. qty 3 -1
  cart                 show the cart
  clear                empty the cart
  checkout             place an order for the cart contents
  book <service-id>    book a service appointment
  quit                 exit
`)
}

func (s *session) render() {
	s.renderer.Render(view.Project(s.cart.Items()))
}

func (s *session) listProducts(ctx context.Context) {
	products, err := s.client.FetchProducts(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Could not load products: %v\n", err)
		return
	}
	s.products = make(map[int64]api.Product, len(products))
	for _, p := range products {
		s.products[p.ID] = p
		stock := "out of stock"
		if p.IsAvailable && p.StockQuantity > 0 {
			stock = fmt.Sprintf("%d in stock", p.StockQuantity)
		}
		fmt.Fprintf(s.out, "  [%d] %s - %s (%s)\n", p.ID, p.Name, view.FormatPrice(p.Price), stock)
	}
}

func (s *session) listServices(ctx context.Context) {
	services, err := s.client.FetchServices(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Could not load services: %v\n", err)
		return
	}
	s.services = make(map[int64]api.Service, len(services))
	for _, svc := range services {
		s.services[svc.ID] = svc
		fmt.Fprintf(s.out, "  [%d] %s - %s\n", svc.ID, svc.Name, view.FormatPrice(svc.Price))
	}
}

func (s *session) listGallery(ctx context.Context) {
	images, err := s.client.FetchGallery(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Could not load gallery: %v\n", err)
		return
	}
	for _, img := range images {
		fmt.Fprintf(s.out, "  %s (%s)\n", img.Title, img.Category)
	}
}

func (s *session) addToCart(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: add <product-id> [qty]")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid product ID %q\n", args[0])
		return
	}
	qty := int32(1)
	if len(args) > 1 {
		n, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil || n < 1 {
			fmt.Fprintf(s.out, "Invalid quantity %q\n", args[1])
			return
		}
		qty = int32(n)
	}

	if s.products == nil {
		s.listProducts(ctx)
	}
	product, ok := s.products[id]
	if !ok {
		fmt.Fprintf(s.out, "No product with ID %d. Run 'products' first.\n", id)
		return
	}

	outcome := s.cart.Add(cartstore.Item{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Image:     product.Image,
		Stock:     product.StockQuantity,
	}, qty)
	s.report(outcome, product.Name)
}

func (s *session) removeFromCart(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: remove <product-id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid product ID %q\n", args[0])
		return
	}
	s.cart.Remove(id)
}

func (s *session) adjustQuantity(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: qty <product-id> <delta>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid product ID %q\n", args[0])
		return
	}
	delta, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil || delta == 0 {
		fmt.Fprintf(s.out, "Invalid delta %q\n", args[1])
		return
	}
	outcome := s.cart.AdjustQuantity(id, int32(delta))
	s.report(outcome, fmt.Sprintf("product %d", id))
}

func (s *session) report(outcome cart.Outcome, name string) {
	switch outcome {
	case cart.StockExceeded:
		fmt.Fprintf(s.out, "Not enough stock of %s.\n", name)
	case cart.NoChange:
		fmt.Fprintln(s.out, "Cart unchanged.")
	}
}

func (s *session) checkout(ctx context.Context) {
	co := checkout.New(s.client, s.cart, s.logger)
	if err := co.Open(); err != nil {
		fmt.Fprintf(s.out, "Cannot start checkout: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Order total: %s\n", view.FormatPrice(co.Total()))

	method, ok := s.askPaymentMethod(ctx)
	if !ok {
		return
	}
	if err := co.SelectPayment(method); err != nil {
		fmt.Fprintf(s.out, "Cannot select payment: %v\n", err)
		return
	}

	form := checkout.Form{
		FullName:      s.ask(ctx, "Full name: "),
		PhoneNumber:   s.ask(ctx, "Phone number: "),
		Estate:        s.ask(ctx, "Estate: "),
		StreetAddress: s.ask(ctx, "Street address: "),
	}

	result, err := co.Submit(ctx, form)
	if err != nil {
		fmt.Fprintf(s.out, "Order failed: %v\nFix the problem and run 'checkout' again.\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s (order #%d, %s)\n", result.Message, result.OrderID, view.FormatPrice(result.TotalPrice))
	if result.PaymentErr != nil {
		fmt.Fprintf(s.out, "Your order was placed, but the M-Pesa prompt could not be sent: %v\n", result.PaymentErr)
	}
}

func (s *session) book(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: book <service-id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid service ID %q\n", args[0])
		return
	}
	if s.services == nil {
		s.listServices(ctx)
	}
	svc, ok := s.services[id]
	if !ok {
		fmt.Fprintf(s.out, "No service with ID %d. Run 'services' first.\n", id)
		return
	}
	fmt.Fprintf(s.out, "Booking %s (%s)\n", svc.Name, view.FormatPrice(svc.Price))

	req := api.BookingRequest{
		ServiceID:       id,
		BookingDate:     s.ask(ctx, "Date (YYYY-MM-DD): "),
		BookingTime:     s.ask(ctx, "Time (HH:MM): "),
		FullName:        s.ask(ctx, "Full name: "),
		PhoneNumber:     s.ask(ctx, "Phone number: "),
		VehicleModel:    s.ask(ctx, "Vehicle model: "),
		NumberPlate:     s.ask(ctx, "Number plate: "),
		AdditionalNotes: s.ask(ctx, "Notes (optional): "),
	}

	resp, err := s.client.CreateBooking(ctx, req)
	if err != nil {
		fmt.Fprintf(s.out, "Booking failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s (booking #%d, %s)\n", resp.Message, resp.BookingID, view.FormatPrice(resp.TotalPrice))
}

func (s *session) ask(ctx context.Context, prompt string) string {
	fmt.Fprint(s.out, prompt)
	line, _ := s.readLine(ctx)
	return strings.TrimSpace(line)
}

func (s *session) askPaymentMethod(ctx context.Context) (checkout.PaymentMethod, bool) {
	for {
		answer := s.ask(ctx, "Pay with [1] M-Pesa or [2] on delivery? ")
		switch answer {
		case "1", "mpesa", "m-pesa":
			return checkout.PaymentMpesa, true
		case "2", "delivery":
			return checkout.PaymentOnDelivery, true
		case "":
			return "", false
		}
		fmt.Fprintln(s.out, "Please answer 1 or 2.")
	}
}

// readLine returns the next input line, reporting false on EOF or when the
// context has been cancelled.
func (s *session) readLine(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}
