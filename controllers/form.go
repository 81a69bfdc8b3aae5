package controllers

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"foodorder/imagestore"
	"foodorder/pkg/apperr"
	"foodorder/services"

	"github.com/gin-gonic/gin"
)

var (
	cuisineKey  = regexp.MustCompile(`^cuisines\[(\d+)\]$`)
	menuItemKey = regexp.MustCompile(`^menuItems\[(\d+)\]\[(\w+)\]$`)
)

// parseRestaurantForm reads the restaurant form as sent by the frontend:
// scalar fields, cuisines[i] and menuItems[i][field].
func parseRestaurantForm(c *gin.Context) (*services.RestaurantIn, error) {
	if _, err := c.MultipartForm(); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, apperr.Wrap(apperr.KindInvalid, "invalid form", err)
	}
	form := c.Request.PostForm

	in := &services.RestaurantIn{
		RestaurantName: form.Get("restaurantName"),
		City:           form.Get("city"),
		Country:        form.Get("country"),
	}

	var err error
	if in.DeliveryPrice, err = formInt(form.Get("deliveryPrice"), "deliveryPrice"); err != nil {
		return nil, err
	}
	eta, err := formInt(form.Get("estimatedDeliveryTime"), "estimatedDeliveryTime")
	if err != nil {
		return nil, err
	}
	in.EstimatedDeliveryTime = int(eta)

	cuisines := map[int]string{}
	items := map[int]map[string]string{}
	for k, v := range form {
		if len(v) == 0 {
			continue
		}
		if m := cuisineKey.FindStringSubmatch(k); m != nil {
			i, err := formIndex(k, m[1])
			if err != nil {
				return nil, err
			}
			cuisines[i] = v[0]
			continue
		}
		if m := menuItemKey.FindStringSubmatch(k); m != nil {
			i, err := formIndex(k, m[1])
			if err != nil {
				return nil, err
			}
			if items[i] == nil {
				items[i] = map[string]string{}
			}
			items[i][m[2]] = v[0]
		}
	}

	in.Cuisines = append(in.Cuisines, form["cuisines"]...)
	for _, i := range sortedKeys(cuisines) {
		in.Cuisines = append(in.Cuisines, cuisines[i])
	}

	for _, i := range sortedKeys(items) {
		f := items[i]
		price, err := formInt(f["price"], "menu item price")
		if err != nil {
			return nil, err
		}
		in.MenuItems = append(in.MenuItems, services.MenuItemIn{ID: f["_id"], Name: f["name"], Price: price})
	}
	return in, nil
}

func formInt(s, field string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperr.Invalid("%s is required", field)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperr.Invalid("%s must be a whole number", field)
	}
	return n, nil
}

// maxFormIndex bounds the i in cuisines[i] and menuItems[i][field].
const maxFormIndex = 10000

func formIndex(key, digits string) (int, error) {
	i, err := strconv.Atoi(digits)
	if err != nil || i > maxFormIndex {
		return 0, apperr.Invalid("invalid form field %s", key)
	}
	return i, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// formImage opens the imageFile upload. It returns nil when none was sent.
func formImage(c *gin.Context) (*imagestore.Image, io.Closer, error) {
	fh, err := c.FormFile("imageFile")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInvalid, "invalid image upload", err)
	}
	img, closer, err := imagestore.Open(fh)
	if err != nil {
		return nil, nil, err
	}
	return &img, closer, nil
}
