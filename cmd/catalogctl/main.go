// Команда catalogctl редактирует JSON-файлы каталога витрины.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const envCatalogDir = "STOREFRONT_CATALOG_DIR"

var errUsage = errors.New("usage: catalogctl [-dir DIR] list|product-upsert|product-delete|topping-upsert|topping-delete|store-update [flags]")

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := run(os.Args[1:], os.Stdout); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	global := flag.NewFlagSet("catalogctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	defaultDir := os.Getenv(envCatalogDir)
	if defaultDir == "" {
		defaultDir = "./data"
	}
	dir := global.String("dir", defaultDir, "catalog directory (fallback: "+envCatalogDir+")")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if global.NArg() == 0 {
		return errUsage
	}

	editor, err := catalog.OpenEditor(*dir, log.WithField("component", "catalogctl"))
	if err != nil {
		return err
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "list":
		return listCatalog(editor, out)
	case "product-upsert":
		err = upsertProduct(editor, rest, out)
	case "product-delete":
		err = deleteByID(rest, editor.DeleteProduct)
	case "topping-upsert":
		err = upsertTopping(editor, rest, out)
	case "topping-delete":
		err = deleteByID(rest, editor.DeleteTopping)
	case "store-update":
		err = updateStore(editor, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err != nil {
		return err
	}
	return editor.Save()
}

func listCatalog(editor *catalog.Editor, out io.Writer) error {
	store := editor.Store()
	_, _ = fmt.Fprintf(out, "store: %s (%s) whatsapp=%s\n\n", store.Name, store.Slogan, store.WhatsApp)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PRODUCT\tNAME\tCATEGORY\tPRICE\tMAX\tTOPPINGS")
	for _, p := range editor.Products() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n", p.ID, p.Name, p.Category, p.Price, p.MaxOrder, strings.Join(p.Toppings, ","))
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "TOPPING\tNAME\tPRICE")
	for _, t := range editor.Toppings() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", t.ID, t.Name, t.Price)
	}
	return w.Flush()
}

func upsertProduct(editor *catalog.Editor, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("product-upsert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "product id (empty creates a new product)")
	name := fs.String("name", "", "product name")
	description := fs.String("description", "", "product description")
	price := fs.Int64("price", 0, "unit price in minor units")
	category := fs.String("category", "", "category label")
	image := fs.String("image", "", "image path")
	maxOrder := fs.Int("max-order", 0, "max quantity per line (0 = no limit)")
	toppings := fs.String("toppings", "", "comma-separated eligible topping ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// существующий товар обновляется только переданными флагами
	p := domain.Product{ID: *id}
	for _, existing := range editor.Products() {
		if *id != "" && existing.ID == *id {
			p = existing
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			p.Name = *name
		case "description":
			p.Description = *description
		case "price":
			p.Price = *price
		case "category":
			p.Category = *category
		case "image":
			p.Image = *image
		case "max-order":
			p.MaxOrder = *maxOrder
		case "toppings":
			p.Toppings = splitIDs(*toppings)
		}
	})

	saved, err := editor.UpsertProduct(p)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, saved.ID)
	return nil
}

func upsertTopping(editor *catalog.Editor, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("topping-upsert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "topping id (empty creates a new topping)")
	name := fs.String("name", "", "topping name")
	price := fs.Int64("price", 0, "price in minor units")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := domain.Topping{ID: *id}
	for _, existing := range editor.Toppings() {
		if *id != "" && existing.ID == *id {
			t = existing
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			t.Name = *name
		case "price":
			t.Price = *price
		}
	})

	saved, err := editor.UpsertTopping(t)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, saved.ID)
	return nil
}

func deleteByID(args []string, remove func(id string) error) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "id to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	return remove(*id)
}

func updateStore(editor *catalog.Editor, args []string) error {
	fs := flag.NewFlagSet("store-update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg := editor.Store()
	fs.StringVar(&cfg.Name, "name", cfg.Name, "store name")
	fs.StringVar(&cfg.Slogan, "slogan", cfg.Slogan, "store slogan")
	fs.StringVar(&cfg.WhatsApp, "whatsapp", cfg.WhatsApp, "order recipient number")
	fs.StringVar(&cfg.Logo, "logo", cfg.Logo, "logo path")
	fs.StringVar(&cfg.Favicon, "favicon", cfg.Favicon, "favicon path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	editor.UpdateStore(cfg)
	return nil
}

func splitIDs(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
