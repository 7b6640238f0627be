package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Ijanques/pysteis/internal/config"
	"github.com/Ijanques/pysteis/internal/database"
	"github.com/Ijanques/pysteis/internal/models"
	"github.com/Ijanques/pysteis/internal/store"
	"github.com/Ijanques/pysteis/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	st := store.New(db)
	if err := st.Initialize(context.Background()); err != nil {
		log.Fatalf("Initialize store: %v", err)
	}

	log.Printf("Store initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("/categories", handleCategories(st))
	mux.HandleFunc("/categories/", handleCategoryByID(st))
	mux.HandleFunc("/products", handleProducts(st))
	mux.HandleFunc("/products/", handleProductByID(st))
	mux.HandleFunc("/sales", handleSales(st))
	mux.HandleFunc("/sales/", handleSaleByID(st))
	mux.HandleFunc("/reports/top-products", handleTopProducts(st))
	mux.HandleFunc("/reports/top-categories", handleTopCategories(st))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type productRequest struct {
	Code        string  `json:"code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	CategoryID  *int64  `json:"category_id"`
}

type lineItemRequest struct {
	ProductID   int64   `json:"product_id" validate:"required,gt=0"`
	ProductCode string  `json:"product_code" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

func handleCategories(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		switch r.Method {
		case http.MethodGet:
			categories, err := st.ListCategories(ctx)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if categories == nil {
				categories = []models.Category{}
			}
			respondJSON(w, http.StatusOK, categories)

		case http.MethodPost:
			var req categoryRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if errs := validator.ValidateStruct(req); errs != nil {
				respondJSON(w, http.StatusBadRequest, errs)
				return
			}

			category, err := st.AddCategory(ctx, req.Name)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusCreated, category)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleCategoryByID(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := parseID(r.URL.Path, "/categories/")
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}

		switch r.Method {
		case http.MethodGet:
			category, err := st.GetCategory(ctx, id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if category == nil {
				respondError(w, http.StatusNotFound, "Category not found")
				return
			}
			respondJSON(w, http.StatusOK, category)

		case http.MethodPut:
			var req categoryRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if errs := validator.ValidateStruct(req); errs != nil {
				respondJSON(w, http.StatusBadRequest, errs)
				return
			}

			if _, err := st.UpdateCategory(ctx, id, req.Name); err != nil {
				respondStoreError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		case http.MethodDelete:
			if err := st.RemoveCategory(ctx, id); err != nil {
				respondStoreError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleProducts(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		switch r.Method {
		case http.MethodGet:
			var categoryID *int64
			if raw := r.URL.Query().Get("category_id"); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					respondError(w, http.StatusBadRequest, "Invalid category_id")
					return
				}
				categoryID = &id
			}

			products, err := st.ListProducts(ctx, categoryID)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if products == nil {
				products = []models.Product{}
			}
			respondJSON(w, http.StatusOK, products)

		case http.MethodPost:
			in, ok := decodeProduct(w, r)
			if !ok {
				return
			}

			product, err := st.AddProduct(ctx, in)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusCreated, product)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleProductByID(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := parseID(r.URL.Path, "/products/")
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		switch r.Method {
		case http.MethodGet:
			product, err := st.GetProduct(ctx, id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if product == nil {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			respondJSON(w, http.StatusOK, product)

		case http.MethodPut:
			in, ok := decodeProduct(w, r)
			if !ok {
				return
			}

			if _, err := st.UpdateProduct(ctx, id, in); err != nil {
				respondStoreError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		case http.MethodDelete:
			if err := st.RemoveProduct(ctx, id); err != nil {
				respondStoreError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleSales(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		switch r.Method {
		case http.MethodGet:
			sales, err := st.ListSales(ctx)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if sales == nil {
				sales = []models.Sale{}
			}
			respondJSON(w, http.StatusOK, sales)

		case http.MethodPost:
			sale, err := st.CreateSale(ctx)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusCreated, sale)

		default:
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func handleSaleByID(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rest := strings.TrimPrefix(r.URL.Path, "/sales/")
		parts := strings.SplitN(rest, "/", 2)

		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid sale ID")
			return
		}

		sub := ""
		if len(parts) == 2 {
			sub = parts[1]
		}

		switch sub {
		case "":
			switch r.Method {
			case http.MethodGet:
				sale, err := st.GetSale(ctx, id)
				if err != nil {
					respondStoreError(w, err)
					return
				}
				if sale == nil {
					respondError(w, http.StatusNotFound, "Sale not found")
					return
				}
				respondJSON(w, http.StatusOK, sale)

			case http.MethodDelete:
				if err := st.RemoveSale(ctx, id); err != nil {
					respondStoreError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)

			default:
				respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}

		case "items":
			switch r.Method {
			case http.MethodGet:
				items, err := st.ListLineItems(ctx, id)
				if err != nil {
					respondStoreError(w, err)
					return
				}
				if items == nil {
					items = []models.SaleLineItem{}
				}
				respondJSON(w, http.StatusOK, items)

			case http.MethodPost:
				var req lineItemRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					respondError(w, http.StatusBadRequest, "Invalid request body")
					return
				}
				if errs := validator.ValidateStruct(req); errs != nil {
					respondJSON(w, http.StatusBadRequest, errs)
					return
				}

				item, err := st.AddLineItem(ctx, id, store.LineItemInput{
					ProductID:   req.ProductID,
					ProductCode: req.ProductCode,
					Quantity:    req.Quantity,
					UnitPrice:   decimal.NewFromFloat(req.UnitPrice),
				})
				if err != nil {
					respondStoreError(w, err)
					return
				}
				respondJSON(w, http.StatusCreated, item)

			default:
				respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}

		case "finalize":
			if r.Method != http.MethodPost {
				respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}

			sale, err := st.FinalizeSale(ctx, id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondJSON(w, http.StatusOK, sale)

		default:
			respondError(w, http.StatusNotFound, "Not found")
		}
	}
}

// The report endpoints degrade to an empty result set on store failure
// instead of surfacing the error; the screens render them as "no data".
func handleTopProducts(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		report, err := st.TopProducts(r.Context(), limit)
		if err != nil {
			log.Printf("Top products report: %v", err)
			report = nil
		}
		if report == nil {
			report = []models.ProductSales{}
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func handleTopCategories(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		report, err := st.TopCategories(r.Context(), limit)
		if err != nil {
			log.Printf("Top categories report: %v", err)
			report = nil
		}
		if report == nil {
			report = []models.CategorySales{}
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (store.ProductInput, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return store.ProductInput{}, false
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		respondJSON(w, http.StatusBadRequest, errs)
		return store.ProductInput{}, false
	}

	return store.ProductInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		CategoryID:  req.CategoryID,
	}, true
}

func parseID(path, prefix string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(path, prefix), 10, 64)
}

func respondStoreError(w http.ResponseWriter, err error) {
	var cerr *database.ConstraintError
	switch {
	case errors.As(err, &cerr):
		respondError(w, http.StatusConflict, cerr.Error())
	case errors.Is(err, database.ErrProductHasSales):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrSaleFinalized):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrSaleNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
