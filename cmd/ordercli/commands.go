package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	"backoffice/internal/usecase"
)

// CLIの操作者（監査ログは無いのでIDは固定）
const cliActorID int64 = 1

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users <keyword>",
		Short: "Search users by nickname, phone, login or number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.search.SearchUsers(cmd.Context(), args[0])
			if res.Error != "" {
				return errors.New(res.Error)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NO\tUSER")
			for _, u := range res.Items {
				fmt.Fprintf(w, "%s\t%s\n", u.No, u.Label())
			}
			fmt.Fprintf(w, "total: %d\n", res.Total)
			return w.Flush()
		},
	}
}

func newProductsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "products <keyword>",
		Short: "Search products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.search.SearchProducts(cmd.Context(), args[0])
			if res.Error != "" {
				return errors.New(res.Error)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NO\tPRODUCT")
			for _, p := range res.Items {
				fmt.Fprintf(w, "%s\t%s\n", p.No, p.Label())
			}
			fmt.Fprintf(w, "total: %d\n", res.Total)
			return w.Flush()
		},
	}
}

func newCartCmd(a *app) *cobra.Command {
	var userNo string

	cart := &cobra.Command{
		Use:   "cart",
		Short: "Show or edit a user's cart",
	}
	cart.PersistentFlags().StringVar(&userNo, "user", "", "user number (required)")
	_ = cart.MarkPersistentFlagRequired("user")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cart.FetchUserCart(cmd.Context(), userNo)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c)
		},
	}

	var productNo string
	var qty int64
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product (same product accumulates)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cart.AddToCart(cmd.Context(), userNo, productNo, qty)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c)
		},
	}
	add.Flags().StringVar(&productNo, "product", "", "product number (required)")
	add.Flags().Int64Var(&qty, "qty", 1, "quantity")
	_ = add.MarkFlagRequired("product")

	var setProduct string
	var setQty int64
	set := &cobra.Command{
		Use:   "set",
		Short: "Set the quantity of a product in the cart (0 removes it)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := findCartItem(cmd, a, userNo, setProduct)
			if err != nil {
				return err
			}
			c, err := a.cart.UpdateQuantity(cmd.Context(), userNo, item, setQty)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c)
		},
	}
	set.Flags().StringVar(&setProduct, "product", "", "product number (required)")
	set.Flags().Int64Var(&setQty, "qty", 0, "new quantity")
	_ = set.MarkFlagRequired("product")
	_ = set.MarkFlagRequired("qty")

	var removeProduct string
	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove a product from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := findCartItem(cmd, a, userNo, removeProduct)
			if err != nil {
				return err
			}
			c, err := a.cart.RemoveFromCart(cmd.Context(), userNo, item)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c)
		},
	}
	remove.Flags().StringVar(&removeProduct, "product", "", "product number (required)")
	_ = remove.MarkFlagRequired("product")

	cart.AddCommand(show, add, set, remove)
	return cart
}

func newOrderCmd(a *app) *cobra.Command {
	order := &cobra.Command{
		Use:   "order",
		Short: "Create orders from a user's cart",
	}

	var userNo string
	var form usecase.OrderForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an order from the user's current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runOrderWizard(cmd, a, userNo, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s created: %d item(s), total %s\n",
				out.OrderNo, out.ItemCount, out.Total.Format())
			return nil
		},
	}
	create.Flags().StringVar(&userNo, "user", "", "user number (required)")
	create.Flags().StringVar(&form.ShipAddress, "ship-address", "", "shipping address (required)")
	create.Flags().StringVar(&form.Description, "description", "", "order description")
	create.Flags().StringVar(&form.Remark, "remark", "", "remark")
	create.Flags().StringVar(&form.OperatorNo, "operator", "", "operator number")
	create.Flags().StringVar(&form.CustomerNo, "customer", "", "customer number")
	create.Flags().StringVar(&form.LogisticsNo, "logistics", "", "logistics number")
	_ = create.MarkFlagRequired("user")
	_ = create.MarkFlagRequired("ship-address")

	order.AddCommand(create)
	return order
}

// 画面と同じ順に進める：会員検索 → 選択 → カート読込 → 確認 → 送信
func runOrderWizard(cmd *cobra.Command, a *app, userNo string, form usecase.OrderForm) (usecase.SubmitOutput, error) {
	ctx := cmd.Context()

	w, err := a.wizard.Start(ctx, cliActorID)
	if err != nil {
		return usecase.SubmitOutput{}, err
	}
	//1回の実行で使い捨て
	defer func() {
		if err := a.wizard.Discard(context.WithoutCancel(ctx), cliActorID, w.ID); err != nil {
			a.log.Debug("discard wizard failed", zap.String("wizard_id", w.ID), zap.Error(err))
		}
	}()

	users, err := a.wizard.SearchUsers(ctx, cliActorID, w.ID, userNo)
	if err != nil {
		return usecase.SubmitOutput{}, err
	}
	if users.Error != "" {
		return usecase.SubmitOutput{}, errors.New(users.Error)
	}
	if _, err := a.wizard.SelectUser(ctx, cliActorID, w.ID, userNo); err != nil {
		return usecase.SubmitOutput{}, err
	}

	//カートを読み込んで商品選択へ
	if _, err := a.wizard.Next(ctx, cliActorID, w.ID); err != nil {
		return usecase.SubmitOutput{}, err
	}
	view, err := a.wizard.Next(ctx, cliActorID, w.ID)
	if err != nil {
		return usecase.SubmitOutput{}, err
	}
	if err := printCart(cmd.ErrOrStderr(), model.UserCart{Items: view.Items, TotalPrice: view.Total, ItemCount: view.ItemCount}); err != nil {
		return usecase.SubmitOutput{}, err
	}

	return a.wizard.Submit(ctx, cliActorID, w.ID, form)
}

func findCartItem(cmd *cobra.Command, a *app, userNo string, productNo string) (model.CartItem, error) {
	c, err := a.cart.FetchUserCart(cmd.Context(), userNo)
	if err != nil {
		return model.CartItem{}, err
	}
	for _, it := range c.Items {
		if it.ProductNo == productNo {
			return it, nil
		}
	}
	return model.CartItem{}, fmt.Errorf("product %s is not in the cart", productNo)
}

func printCart(out io.Writer, c model.UserCart) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPRODUCT\tQTY\tUNIT\tSUBTOTAL")
	for _, it := range c.Items {
		name := it.ProductNo
		if it.Product != nil && it.Product.Name != "" {
			name = it.Product.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", it.No, name, it.Quantity, it.UnitPrice.Format(), it.TotalPrice.Format())
	}
	fmt.Fprintf(w, "%s\t\t\t\t%s\n", strings.Repeat("-", 4), strings.Repeat("-", 8))
	fmt.Fprintf(w, "total\t\t%d item(s)\t\t%s\n", c.ItemCount, c.TotalPrice.Format())
	return w.Flush()
}
