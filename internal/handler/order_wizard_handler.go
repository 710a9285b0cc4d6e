package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"backoffice/internal/usecase"
)

// /admin/order-wizards のHTTP
type OrderWizardHandler struct {
	uc *usecase.OrderWizardUsecase
}

// DI
func NewOrderWizardHandler(uc *usecase.OrderWizardUsecase) *OrderWizardHandler {
	return &OrderWizardHandler{uc: uc}
}

type SelectUserRequest struct {
	UserNo string `json:"userNo" validate:"required,max=64"`
}

type AddItemRequest struct {
	ProductNo string `json:"productNo" validate:"required,max=64"`
	//0は1として扱う
	Quantity int64 `json:"quantity" validate:"gte=0"`
}

type UpdateItemRequest struct {
	//0以下は削除
	Quantity *int64 `json:"quantity" validate:"required"`
}

// 認証とadminガードは呼び出し側でグループに付ける
func (h *OrderWizardHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.start)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.discard)

	//1: 会員選択
	g.GET("/:id/users", h.searchUsers)
	g.PUT("/:id/user", h.selectUser)

	//遷移
	g.POST("/:id/next", h.next)
	g.POST("/:id/back", h.back)
	g.POST("/:id/reset", h.reset)

	//2: 商品とカート
	g.GET("/:id/products", h.searchProducts)
	g.POST("/:id/cart/items", h.addItem)
	g.PATCH("/:id/cart/items/:itemNo", h.updateItem)
	g.DELETE("/:id/cart/items/:itemNo", h.removeItem)
	g.POST("/:id/cart/refresh", h.refreshCart)

	//3: 確認と送信
	g.POST("/:id/submit", h.submit)
}

func (h *OrderWizardHandler) start(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Start(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderWizardHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 画面を閉じたとき
func (h *OrderWizardHandler) discard(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Discard(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// 上流の失敗は200 + 空結果（errorに理由）
func (h *OrderWizardHandler) searchUsers(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.SearchUsers(c.Request().Context(), userID, c.Param("id"), c.QueryParam("keyword"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderWizardHandler) selectUser(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req SelectUserRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	out, err := h.uc.SelectUser(c.Request().Context(), userID, c.Param("id"), req.UserNo)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderWizardHandler) next(c echo.Context) error {
	return h.transition(c, h.uc.Next)
}

func (h *OrderWizardHandler) back(c echo.Context) error {
	return h.transition(c, h.uc.Back)
}

func (h *OrderWizardHandler) reset(c echo.Context) error {
	return h.transition(c, h.uc.Reset)
}

func (h *OrderWizardHandler) searchProducts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.SearchProducts(c.Request().Context(), userID, c.Param("id"), c.QueryParam("keyword"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderWizardHandler) addItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddItemRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, c.Param("id"), req.ProductNo, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderWizardHandler) updateItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateItemRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), userID, c.Param("id"), c.Param("itemNo"), *req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderWizardHandler) removeItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, c.Param("id"), c.Param("itemNo"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderWizardHandler) refreshCart(c echo.Context) error {
	return h.transition(c, h.uc.RefreshCart)
}

func (h *OrderWizardHandler) submit(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//フォームの検証はusecase側（CLIと共通）
	var form usecase.OrderForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Submit(c.Request().Context(), userID, c.Param("id"), form)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 入力が wizard id だけの操作
func (h *OrderWizardHandler) transition(c echo.Context, op func(ctx context.Context, actorID int64, id string) (usecase.WizardView, error)) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := op(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
