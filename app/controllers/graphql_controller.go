package controllers

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	gql "github.com/shashiranjanraj/bazaar/pkg/graphql"
)

// GraphQLController serves a read-only catalog schema so dashboards can
// fetch exactly the slice of the tree they render.
type GraphQLController struct {
	schema graphql.Schema
}

func NewGraphQLController(db *gorm.DB) (*GraphQLController, error) {
	repos := repositories.New(db)

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.Int},
			"name":      &graphql.Field{Type: graphql.String},
			"isProduct": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Category).IsProduct, nil
				},
			},
			"isActive": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Category).IsActive, nil
				},
			},
			"price":       &graphql.Field{Type: graphql.Float},
			"description": &graphql.Field{Type: graphql.String},
		},
	})
	categoryType.AddFieldConfig("available", &graphql.Field{
		Type: graphql.Int,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			cat := p.Source.(models.Category)
			if !cat.IsProduct {
				return 0, nil
			}
			qty, err := repos.Categories.AvailableQty(cat.ID, nil)
			return int(qty), err
		},
	})
	categoryType.AddFieldConfig("breadcrumb", &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return repos.Categories.BreadcrumbString(p.Source.(models.Category).ID)
		},
	})
	categoryType.AddFieldConfig("children", &graphql.Field{
		Type: graphql.NewList(categoryType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id := p.Source.(models.Category).ID
			return repos.Categories.LevelFiltered(&id, 0, 100, false)
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
			"isDeliverable": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Location).IsDeliverable, nil
				},
			},
		},
	})
	locationType.AddFieldConfig("neighborhoods", &graphql.Field{
		Type: graphql.NewList(locationType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return repos.Locations.Neighborhoods(p.Source.(models.Location).ID)
		},
	})

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Args: graphql.FieldConfigArgument{
					"parent": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var parent *uint
					if raw, ok := p.Args["parent"].(int); ok && raw > 0 {
						id := uint(raw)
						parent = &id
					}
					return repos.Categories.LevelFiltered(parent, 0, 100, false)
				},
			},
			"category": &graphql.Field{
				Type: categoryType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					cat, err := repos.Categories.GetByID(uint(p.Args["id"].(int)))
					if err == repositories.ErrNotFound {
						return nil, nil
					}
					return cat, err
				},
			},
			"cities": &graphql.Field{
				Type: graphql.NewList(locationType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return repos.Locations.Cities()
				},
			},
		},
	})

	schema, err := gql.NewSchema(rootQuery)
	if err != nil {
		return nil, err
	}
	return &GraphQLController{schema: schema}, nil
}

type graphqlInput struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// Query executes one GraphQL request.
func (c *GraphQLController) Query(cc *ctx.Context) {
	var in graphqlInput
	if !cc.BindJSON(&in) {
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         c.schema,
		RequestString:  in.Query,
		VariableValues: in.Variables,
		Context:        cc.Context(),
	})
	cc.JSON(http.StatusOK, result)
}
