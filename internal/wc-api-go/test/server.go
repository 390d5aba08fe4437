package test

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"WooFeedSync/internal/wooapi/models"
)

// Server is an in-memory WooCommerce + WordPress REST backend for package tests.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	nextID     int
	products   map[int]*models.Product
	variations map[int][]*models.Variation
	categories []*models.ProductCategory
	brands     map[string][]Term
	assigned   map[int]map[string][]int
	media      []Media
	images     map[string][]byte
	requests   []string

	// BrandTaxonomies lists the registered brand taxonomies. Others answer 404.
	BrandTaxonomies []string
	// SkuLookupMisses makes the next N sku lookups for a SKU return nothing.
	SkuLookupMisses map[string]int
	// FailStatus forces a status for "METHOD /path" (without /wp-json prefix).
	FailStatus map[string]int
}

type Term struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug,omitempty"`
	Parent int    `json:"parent"`
}

type Media struct {
	ID        int    `json:"id"`
	Filename  string `json:"-"`
	Size      int    `json:"-"`
	SourceURL string `json:"source_url"`
}

func NewServer() *Server {
	s := &Server{
		nextID:          100,
		products:        map[int]*models.Product{},
		variations:      map[int][]*models.Variation{},
		brands:          map[string][]Term{},
		assigned:        map[int]map[string][]int{},
		images:          map[string][]byte{},
		BrandTaxonomies: []string{"product_brand"},
		SkuLookupMisses: map[string]int{},
		FailStatus:      map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /wp-json/wc/v3/products", s.listProducts)
	mux.HandleFunc("POST /wp-json/wc/v3/products", s.createProduct)
	mux.HandleFunc("GET /wp-json/wc/v3/products/{id}", s.getProduct)
	mux.HandleFunc("PUT /wp-json/wc/v3/products/{id}", s.updateProduct)
	mux.HandleFunc("GET /wp-json/wc/v3/products/{id}/variations", s.listVariations)
	mux.HandleFunc("POST /wp-json/wc/v3/products/{id}/variations/batch", s.batchVariations)
	mux.HandleFunc("GET /wp-json/wc/v3/products/categories", s.listCategories)
	mux.HandleFunc("POST /wp-json/wc/v3/products/categories", s.createCategory)
	mux.HandleFunc("GET /wp-json/wp/v2/{taxonomy}", s.listTerms)
	mux.HandleFunc("POST /wp-json/wp/v2/{taxonomy}", s.createTerm)
	mux.HandleFunc("POST /wp-json/wp/v2/product/{id}", s.assignTerms)
	mux.HandleFunc("POST /wp-json/wp/v2/media", s.uploadMedia)
	mux.HandleFunc("GET /images/{name}", s.serveImage)
	mux.HandleFunc("GET /redirect/{name}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/images/"+r.PathValue("name"), http.StatusFound)
	})

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/wp-json")
		s.mu.Lock()
		s.requests = append(s.requests, key)
		code, fail := s.FailStatus[key]
		s.mu.Unlock()
		if fail {
			writeError(w, code, "forced_failure", "forced failure", 0)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, message string, resourceID int) {
	body := map[string]interface{}{
		"code":    errCode,
		"message": message,
		"data":    map[string]interface{}{"status": code, "resource_id": resourceID},
	}
	writeJSON(w, code, body)
}

func paginate(r *http.Request, n int) (int, int) {
	per, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if per <= 0 {
		per = 10
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	from := (page - 1) * per
	if from > n {
		from = n
	}
	to := from + per
	if to > n {
		to = n
	}
	return from, to
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

func (s *Server) skuOwner(sku string, except int) int {
	if sku == "" {
		return 0
	}
	for id, p := range s.products {
		if id != except && p.Sku == sku {
			return id
		}
	}
	for pid, vs := range s.variations {
		for _, v := range vs {
			if v.ID != except && v.Sku == sku {
				return pid
			}
		}
	}
	return 0
}

func (s *Server) sortedProducts() []*models.Product {
	ids := make([]int, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.products[id])
	}
	return out
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	sku, status := q.Get("sku"), q.Get("status")
	if sku != "" && s.SkuLookupMisses[sku] > 0 {
		s.SkuLookupMisses[sku]--
		writeJSON(w, http.StatusOK, []interface{}{})
		return
	}

	var out []*models.Product
	for _, p := range s.sortedProducts() {
		if sku != "" && p.Sku != sku {
			continue
		}
		switch status {
		case "", "any":
			if p.Status == "trash" {
				continue
			}
		default:
			if p.Status != status {
				continue
			}
		}
		out = append(out, p)
	}
	from, to := paginate(r, len(out))
	writeJSON(w, http.StatusOK, append([]*models.Product{}, out[from:to]...))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	p, ok := s.products[id]
	if !ok {
		writeError(w, http.StatusNotFound, "woocommerce_rest_product_invalid_id", "Invalid ID.", 0)
	}
	return p, ok
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, p)
	}
}

func decodeProduct(r *http.Request) (*models.Product, error) {
	var p models.Product
	err := json.NewDecoder(r.Body).Decode(&p)
	return &p, err
}

// mergeProduct overlays the keys present in patch on old, the way the store
// treats a partial update. A null value leaves the field unchanged.
func mergeProduct(old *models.Product, patch map[string]json.RawMessage) (*models.Product, error) {
	body, err := json.Marshal(old)
	if err != nil {
		return nil, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &merged); err != nil {
		return nil, err
	}
	for k, v := range patch {
		if string(v) == "null" {
			continue
		}
		merged[k] = v
	}
	if body, err = json.Marshal(merged); err != nil {
		return nil, err
	}
	var p models.Product
	err = json.Unmarshal(body, &p)
	return &p, err
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := decodeProduct(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error(), 0)
		return
	}
	if owner := s.skuOwner(p.Sku, 0); owner != 0 {
		writeError(w, http.StatusBadRequest, models.CodeInvalidSku,
			"Invalid or duplicated SKU.", owner)
		return
	}
	p.ID = s.id()
	if p.Status == "" {
		p.Status = "publish"
	}
	s.products[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error(), 0)
		return
	}
	p, err := mergeProduct(old, patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error(), 0)
		return
	}
	if owner := s.skuOwner(p.Sku, old.ID); owner != 0 {
		writeError(w, http.StatusBadRequest, models.CodeInvalidSku,
			"Invalid or duplicated SKU.", owner)
		return
	}
	p.ID = old.ID
	s.products[p.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listVariations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	vs := s.variations[p.ID]
	from, to := paginate(r, len(vs))
	writeJSON(w, http.StatusOK, append([]*models.Variation{}, vs[from:to]...))
}

func (s *Server) batchVariations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var b models.VariationBatch
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error(), 0)
		return
	}

	var resp models.VariationBatchResponse
	if len(b.Delete) > 0 {
		keep := s.variations[p.ID][:0]
		for _, v := range s.variations[p.ID] {
			deleted := false
			for _, id := range b.Delete {
				if v.ID == id {
					deleted = true
				}
			}
			if deleted {
				resp.Delete = append(resp.Delete, *v)
			} else {
				keep = append(keep, v)
			}
		}
		s.variations[p.ID] = keep
	}
	for _, v := range b.Create {
		if owner := s.skuOwner(v.Sku, 0); owner != 0 {
			resp.Create = append(resp.Create, models.Variation{Error: &models.ErrorWoo{Code: models.CodeInvalidSku}})
			continue
		}
		v.ID = s.id()
		s.variations[p.ID] = append(s.variations[p.ID], v)
		resp.Create = append(resp.Create, *v)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := paginate(r, len(s.categories))
	writeJSON(w, http.StatusOK, append([]*models.ProductCategory{}, s.categories[from:to]...))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c models.ProductCategory
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Name == "" {
		writeError(w, http.StatusBadRequest, "rest_missing_callback_param", "Missing parameter(s): name", 0)
		return
	}
	for _, e := range s.categories {
		if strings.EqualFold(e.Name, c.Name) && e.Parent == c.Parent {
			writeError(w, http.StatusBadRequest, models.CodeTermExists,
				"A term with the name provided already exists with this parent.", e.ID)
			return
		}
	}
	c.ID = s.id()
	s.categories = append(s.categories, &c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) registered(taxonomy string) bool {
	for _, t := range s.BrandTaxonomies {
		if t == taxonomy {
			return true
		}
	}
	return false
}

func (s *Server) listTerms(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tax := r.PathValue("taxonomy")
	if !s.registered(tax) {
		writeError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.", 0)
		return
	}
	terms := s.brands[tax]
	from, to := paginate(r, len(terms))
	writeJSON(w, http.StatusOK, append([]Term{}, terms[from:to]...))
}

func (s *Server) createTerm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tax := r.PathValue("taxonomy")
	if !s.registered(tax) {
		writeError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.", 0)
		return
	}
	var t Term
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil || t.Name == "" {
		writeError(w, http.StatusBadRequest, "rest_missing_callback_param", "Missing parameter(s): name", 0)
		return
	}
	for _, e := range s.brands[tax] {
		if strings.EqualFold(e.Name, t.Name) {
			writeError(w, http.StatusBadRequest, models.CodeTermExists, "A term with the name provided already exists.", e.ID)
			return
		}
	}
	t.ID = s.id()
	s.brands[tax] = append(s.brands[tax], t)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) assignTerms(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body map[string][]int
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error(), 0)
		return
	}
	for tax, ids := range body {
		if !s.registered(tax) {
			writeError(w, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): "+tax, 0)
			return
		}
		if s.assigned[p.ID] == nil {
			s.assigned[p.ID] = map[string][]int{}
		}
		s.assigned[p.ID][tax] = ids
	}
	writeJSON(w, http.StatusOK, map[string]int{"id": p.ID})
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "rest_upload_no_data", "No data supplied.", 0)
		return
	}
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Disposition"))
	if err != nil || params["filename"] == "" {
		writeError(w, http.StatusBadRequest, "rest_upload_no_content_disposition", "No Content-Disposition supplied.", 0)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := Media{ID: s.id(), Filename: params["filename"], Size: len(data)}
	m.SourceURL = fmt.Sprintf("%s/wp-content/uploads/%s", s.URL, m.Filename)
	s.media = append(s.media, m)
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) serveImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.images[r.PathValue("name")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

// AddImage makes GET /images/{name} answer with data and returns its URL.
func (s *Server) AddImage(name string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[name] = data
	return s.URL + "/images/" + name
}

// AddProduct seeds a product and returns its id.
func (s *Server) AddProduct(p models.Product) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	if p.Status == "" {
		p.Status = "publish"
	}
	s.products[p.ID] = &p
	return p.ID
}

// AddCategory seeds a category and returns its id.
func (s *Server) AddCategory(name string, parent int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.ProductCategory{ID: s.id(), Name: name, Parent: parent}
	s.categories = append(s.categories, c)
	return c.ID
}

// AddBrand seeds a term in a brand taxonomy and returns its id.
func (s *Server) AddBrand(taxonomy, name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Term{ID: s.id(), Name: name}
	s.brands[taxonomy] = append(s.brands[taxonomy], t)
	return t.ID
}

// AddVariations seeds variations of a product.
func (s *Server) AddVariations(productID int, vs ...models.Variation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range vs {
		v := vs[i]
		v.ID = s.id()
		s.variations[productID] = append(s.variations[productID], &v)
	}
}

func (s *Server) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.sortedProducts() {
		out = append(out, *p)
	}
	return out
}

func (s *Server) Product(id int) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, false
	}
	return *p, true
}

func (s *Server) Variations(productID int) []models.Variation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Variation
	for _, v := range s.variations[productID] {
		out = append(out, *v)
	}
	return out
}

func (s *Server) Categories() []models.ProductCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProductCategory
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out
}

func (s *Server) Brands(taxonomy string) []Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Term{}, s.brands[taxonomy]...)
}

// Assigned returns term ids set on a product through wp/v2/product/{id}.
func (s *Server) Assigned(productID int, taxonomy string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assigned[productID][taxonomy]
}

func (s *Server) Media() []Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Media{}, s.media...)
}

// Requests returns "METHOD /path" of every request served, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.requests...)
}

// Writes counts non-GET requests to the REST API.
func (s *Server) Writes() int {
	n := 0
	for _, r := range s.Requests() {
		if !strings.HasPrefix(r, http.MethodGet) && !strings.Contains(r, "/images/") {
			n++
		}
	}
	return n
}
