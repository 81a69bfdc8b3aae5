package controllers

import (
	"strconv"

	"foodorder/pkg/resp"
	"foodorder/services"

	"github.com/gin-gonic/gin"
)

type RestaurantController struct {
	Service *services.RestaurantService
}

func NewRestaurantController(s *services.RestaurantService) *RestaurantController {
	return &RestaurantController{Service: s}
}

// GET /api/restaurant/:id
func (ctl *RestaurantController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		resp.BadRequest(c, "invalid restaurant id")
		return
	}
	r, err := ctl.Service.Get(c.Request.Context(), uint(id))
	if err != nil {
		resp.Fail(c, err, "something went wrong")
		return
	}
	resp.OK(c, r)
}

// GET /api/restaurant/search/:city?searchQuery=&selectedCuisines=&sortOption=&page=
func (ctl *RestaurantController) Search(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	out, err := ctl.Service.Search(c.Request.Context(), services.SearchParams{
		City:             c.Param("city"),
		SearchQuery:      c.Query("searchQuery"),
		SelectedCuisines: c.Query("selectedCuisines"),
		SortOption:       c.Query("sortOption"),
		Page:             page,
	})
	if err != nil {
		resp.Fail(c, err, "Something went wrong")
		return
	}
	resp.OK(c, out)
}
