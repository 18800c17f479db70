package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/fleetspot/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services. Field names
// follow the JSON tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	clusterType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cluster",
		Fields: graphql.Fields{
			"center": &graphql.Field{Type: pointType},
			"points": &graphql.Field{Type: graphql.NewList(pointType)},
		},
	})

	driverType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Driver",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"name":      &graphql.Field{Type: graphql.String},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	sampleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Sample",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"driverId":  &graphql.Field{Type: graphql.String},
			"coords":    &graphql.Field{Type: pointType},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DistanceReport",
		Fields: graphql.Fields{
			"driverId":      &graphql.Field{Type: graphql.String},
			"date":          &graphql.Field{Type: graphql.String},
			"samples":       &graphql.Field{Type: graphql.Int},
			"totalDistance": &graphql.Field{Type: graphql.Float},
			"unit":          &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hotspots": &graphql.Field{
				Type:        graphql.NewList(clusterType),
				Description: "Density hotspots in a city on a day, largest first",
				Args: graphql.FieldConfigArgument{
					"city":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"state": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"tier":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "tight"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Hotspots.GetHotspots(p.Context, usecases.HotspotQuery{
						City:  p.Args["city"].(string),
						State: p.Args["state"].(string),
						Date:  p.Args["date"].(string),
						Tier:  p.Args["tier"].(string),
					})
				},
			},
			"distance": &graphql.Field{
				Type:        distanceType,
				Description: "Distance a driver travelled on a day, in meters",
				Args: graphql.FieldConfigArgument{
					"driverId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					date, _ := p.Args["date"].(string)
					if date == "" {
						date = time.Now().UTC().Format(usecases.DateLayout)
					}
					return deps.Distances.DistanceTravelled(p.Context, p.Args["driverId"].(string), date)
				},
			},
			"drivers": &graphql.Field{
				Type:        graphql.NewList(driverType),
				Description: "A page of drivers ordered by creation time",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					drivers, _, err := deps.Drivers.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return drivers, err
				},
			},
			"driver": &graphql.Field{
				Type:        driverType,
				Description: "Get a driver by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Drivers.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"lastLocation": &graphql.Field{
				Type:        sampleType,
				Description: "Most recent position seen for a driver",
				Args: graphql.FieldConfigArgument{
					"driverId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Tracker == nil {
						return nil, nil
					}
					return deps.Tracker.LastPosition(p.Context, p.Args["driverId"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
