package repository

import "tourapi/internal/query"

// TourSchema is what the tour list query string may filter and sort on.
var TourSchema = query.Schema{
	Fields: map[string]query.Field{
		"name":            {Column: "t.name", Kind: query.String, Filter: true, Sort: true},
		"slug":            {Column: "t.slug", Kind: query.String, Filter: true},
		"duration":        {Column: "t.duration", Kind: query.Integer, Filter: true, Sort: true},
		"maxGroupSize":    {Column: "t.max_group_size", Kind: query.Integer, Filter: true, Sort: true},
		"difficulty":      {Column: "t.difficulty", Kind: query.String, Filter: true, Sort: true},
		"ratingsAverage":  {Column: "t.ratings_average", Kind: query.Number, Filter: true, Sort: true},
		"ratingsQuantity": {Column: "t.ratings_quantity", Kind: query.Integer, Filter: true, Sort: true},
		"price":           {Column: "t.price", Kind: query.Number, Filter: true, Sort: true},
		"priceDiscount":   {Column: "t.price_discount", Kind: query.Number, Filter: true, Sort: true},
		"createdAt":       {Column: "t.created_at", Kind: query.Time, Filter: true, Sort: true},
	},
	DefaultSort: "-ratingsAverage",
	TieBreaker:  "t.id",
	MultiValue: map[string]bool{
		"duration":        true,
		"ratingsQuantity": true,
		"ratingsAverage":  true,
		"maxGroupSize":    true,
		"difficulty":      true,
		"price":           true,
	},
}

var UserSchema = query.Schema{
	Fields: map[string]query.Field{
		"name":      {Column: "u.name", Kind: query.String, Filter: true, Sort: true},
		"email":     {Column: "u.email", Kind: query.String, Filter: true, Sort: true},
		"role":      {Column: "u.role", Kind: query.String, Filter: true, Sort: true},
		"createdAt": {Column: "u.created_at", Kind: query.Time, Filter: true, Sort: true},
	},
	DefaultSort: "-createdAt",
	TieBreaker:  "u.id",
	MultiValue:  map[string]bool{"role": true},
}

var ReviewSchema = query.Schema{
	Fields: map[string]query.Field{
		"rating":    {Column: "r.rating", Kind: query.Integer, Filter: true, Sort: true},
		"tour":      {Column: "r.tour_id", Kind: query.String, Filter: true},
		"user":      {Column: "r.user_id", Kind: query.String, Filter: true},
		"createdAt": {Column: "r.created_at", Kind: query.Time, Filter: true, Sort: true},
	},
	DefaultSort: "-createdAt",
	TieBreaker:  "r.id",
	MultiValue:  map[string]bool{"rating": true},
}

var BookingSchema = query.Schema{
	Fields: map[string]query.Field{
		"price":     {Column: "b.price", Kind: query.Number, Filter: true, Sort: true},
		"paid":      {Column: "b.paid", Kind: query.Bool, Filter: true},
		"tour":      {Column: "b.tour_id", Kind: query.String, Filter: true},
		"user":      {Column: "b.user_id", Kind: query.String, Filter: true},
		"createdAt": {Column: "b.created_at", Kind: query.Time, Filter: true, Sort: true},
	},
	DefaultSort: "-createdAt",
	TieBreaker:  "b.id",
}
