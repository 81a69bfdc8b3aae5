package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"foodorder/cart"
	"foodorder/client"
	"foodorder/entity"
	"foodorder/utils"

	"github.com/spf13/cobra"
)

func newClient() *client.Client {
	return client.New(apiURL, apiToken)
}

func parseRestaurantID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid restaurant id %q", s)
	}
	return uint(id), nil
}

func searchCmd() *cobra.Command {
	var opt client.SearchOptions
	cmd := &cobra.Command{
		Use:   "search <city>",
		Short: "Find restaurants in a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newClient().SearchRestaurants(cmd.Context(), args[0], opt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d restaurants found in %s (page %d of %d)\n",
				res.Pagination.Total, args[0], res.Pagination.Page, res.Pagination.Pages)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCUISINES\tDELIVERY\tETA")
			for _, r := range res.Data {
				fmt.Fprintf(tw, "%d\t%s\t%v\t£%s\t%d min\n",
					r.ID, r.RestaurantName, r.Cuisines, utils.FormatMinor(r.DeliveryPrice), r.EstimatedDeliveryTime)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&opt.Query, "query", "q", "", "match restaurant name or cuisine")
	cmd.Flags().StringSliceVarP(&opt.Cuisines, "cuisines", "c", nil, "restaurants must offer all of these")
	cmd.Flags().StringVarP(&opt.Sort, "sort", "s", "bestMatch", "bestMatch, deliveryPrice or estimatedDeliveryTime")
	cmd.Flags().IntVarP(&opt.Page, "page", "p", 1, "result page")
	return cmd
}

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu <restaurantId>",
		Short: "Show a restaurant's menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}
			r, err := newClient().GetRestaurant(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s (delivery £%s, ~%d min)\n",
				r.RestaurantName, r.City, utils.FormatMinor(r.DeliveryPrice), r.EstimatedDeliveryTime)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM ID\tNAME\tPRICE")
			for _, m := range r.MenuItems {
				fmt.Fprintf(tw, "%s\t%s\t£%s\n", m.ID, m.Name, utils.FormatMinor(m.Price))
			}
			return tw.Flush()
		},
	}
}

func cartStore() *cart.FileStore {
	return cart.NewFileStore(envOr("EATS_CART_DIR", cart.SessionDir()))
}

func cartCmd() *cobra.Command {
	store := cartStore()
	root := &cobra.Command{
		Use:   "cart",
		Short: "Manage the basket for a restaurant",
	}

	root.AddCommand(&cobra.Command{
		Use:   "add <restaurantId> <menuItemId>",
		Short: "Add one of a menu item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}
			r, err := newClient().GetRestaurant(cmd.Context(), id)
			if err != nil {
				return err
			}
			m, ok := r.FindMenuItem(args[1])
			if !ok {
				return fmt.Errorf("%s has no menu item %q", r.RestaurantName, args[1])
			}
			c, err := store.Load(id)
			if err != nil {
				return err
			}
			c.Add(m.ID, m.Name, m.Price)
			if err := store.Save(c); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c, r.DeliveryPrice)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "remove <restaurantId> <menuItemId>",
		Short: "Remove a line from the basket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}
			c, err := store.Load(id)
			if err != nil {
				return err
			}
			if !c.Remove(args[1]) {
				return fmt.Errorf("item %q is not in the basket", args[1])
			}
			if err := store.Save(c); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c, -1)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "show <restaurantId>",
		Short: "Print the basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}
			c, err := store.Load(id)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c, -1)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "clear <restaurantId>",
		Short: "Empty the basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}
			return store.Clear(id)
		},
	})
	return root
}

// printCart shows the lines; delivery < 0 means unknown and is left out.
func printCart(w io.Writer, c *cart.Cart, delivery int64) error {
	if c.Empty() {
		_, err := fmt.Fprintln(w, "basket is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range c.Items {
		fmt.Fprintf(tw, "%s\t%s\tx%d\t£%s\n", it.ID, it.Name, it.Quantity, utils.FormatMinor(it.Price*int64(it.Quantity)))
	}
	total := c.Subtotal()
	if delivery >= 0 {
		fmt.Fprintf(tw, "\tdelivery\t\t£%s\n", utils.FormatMinor(delivery))
		total += delivery
	}
	fmt.Fprintf(tw, "\ttotal\t\t£%s\n", utils.FormatMinor(total))
	return tw.Flush()
}

func checkoutCmd() *cobra.Command {
	var d client.DeliveryDetails
	cmd := &cobra.Command{
		Use:   "checkout <restaurantId>",
		Short: "Start payment for the basket and print the payment page URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}
			c, err := cartStore().Load(id)
			if err != nil {
				return err
			}
			if c.Empty() {
				return fmt.Errorf("basket for restaurant %d is empty", id)
			}

			req := client.CheckoutRequest{RestaurantID: args[0], DeliveryDetails: d}
			for _, it := range c.Items {
				req.CartItems = append(req.CartItems, client.CheckoutItem{
					MenuItemID: it.ID, Name: it.Name, Quantity: strconv.Itoa(it.Quantity),
				})
			}
			url, err := newClient().CreateCheckoutSession(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().StringVar(&d.Name, "name", "", "recipient name")
	cmd.Flags().StringVar(&d.AddressLine1, "address", "", "delivery address line 1")
	cmd.Flags().StringVar(&d.City, "city", "", "delivery city")
	cmd.Flags().StringVar(&d.Country, "country", "", "delivery country")
	cmd.Flags().StringVar(&d.Email, "email", "", "receipt email, defaults to the account email")
	for _, f := range []string{"name", "address", "city"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func ordersCmd() *cobra.Command {
	var incoming bool
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List your orders, or your restaurant's with --restaurant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			var (
				orders []client.Order
				err    error
			)
			if incoming {
				orders, err = c.GetMyRestaurantOrders(cmd.Context())
			} else {
				orders, err = c.GetMyOrders(cmd.Context())
			}
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tRESTAURANT\tSTATUS\tTOTAL\tPLACED")
			for _, o := range orders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t£%s\t%s\n",
					o.ID, o.RestaurantSnapshot.RestaurantName, o.Status, o.TotalDisplay, o.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&incoming, "restaurant", false, "list orders placed at your restaurant")

	cmd.AddCommand(&cobra.Command{
		Use:   "status <orderId> <status>",
		Short: "Move an order of your restaurant to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, ok := entity.ParseOrderStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}
			o, err := newClient().UpdateOrderStatus(cmd.Context(), args[0], st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s is now %s\n", o.ID, o.Status)
			return nil
		},
	})
	return cmd
}
