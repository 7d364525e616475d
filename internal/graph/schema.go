package graph

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"

	"go-threads-api/internal/apperror"
	"go-threads-api/internal/core/auth"
	"go-threads-api/internal/domain"
	"go-threads-api/internal/service"
)

// Resolver dispatches GraphQL fields to the services. Field names below are
// the wire contract; resolvers only guard authentication and delegate.
type Resolver struct {
	users   *service.UserService
	threads *service.ThreadService
}

func NewResolver(users *service.UserService, threads *service.ThreadService) *Resolver {
	return &Resolver{users: users, threads: threads}
}

// NewSchema wires the User/Thread object types, queries and mutations. The
// two types reference each other, so the circular fields are attached after
// both objects exist.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"firstName":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"lastName":     &graphql.Field{Type: graphql.String},
			"email":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"profileImage": &graphql.Field{Type: graphql.String},
		},
	})

	threadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Thread",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"content":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"likesCount":     &graphql.Field{Type: graphql.Int},
			"isPublic":       &graphql.Field{Type: graphql.Boolean},
			"parentThreadId": &graphql.Field{Type: graphql.ID},
			"createdAt": &graphql.Field{
				Type:    graphql.String,
				Resolve: threadTime(func(t *domain.Thread) time.Time { return t.CreatedAt }),
			},
			"updatedAt": &graphql.Field{
				Type:    graphql.String,
				Resolve: threadTime(func(t *domain.Thread) time.Time { return t.UpdatedAt }),
			},
		},
	})

	threadType.AddFieldConfig("user", &graphql.Field{Type: graphql.NewNonNull(userType)})
	threadType.AddFieldConfig("replies", &graphql.Field{Type: graphql.NewList(threadType)})
	threadType.AddFieldConfig("parentThread", &graphql.Field{Type: threadType})
	userType.AddFieldConfig("threads", &graphql.Field{
		Type:    graphql.NewList(threadType),
		Resolve: r.resolveUserThreads,
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getUserToken": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.users.GetUserToken(p.Context, stringArg(p, "email"), stringArg(p, "password"))
				},
			},
			"getCurrentLoggedInUser": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.users.GetByID(p.Context, id.ID)
				},
			},
			"getUserThreads": &graphql.Field{
				Type: graphql.NewList(threadType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.threads.ListByUser(p.Context, id.ID)
				},
			},
			"getThread": &graphql.Field{
				Type: threadType,
				Args: graphql.FieldConfigArgument{
					"threadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.threads.GetByID(p.Context, stringArg(p, "threadId"))
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: graphql.ID,
				Args: graphql.FieldConfigArgument{
					"firstName": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lastName":  &graphql.ArgumentConfig{Type: graphql.String},
					"email":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := r.users.CreateUser(p.Context, service.CreateUserInput{
						FirstName: stringArg(p, "firstName"),
						LastName:  stringArg(p, "lastName"),
						Email:     stringArg(p, "email"),
						Password:  stringArg(p, "password"),
					})
					if err != nil {
						return nil, err
					}
					return u.ID, nil
				},
			},
			"createThread": &graphql.Field{
				Type: threadType,
				Args: graphql.FieldConfigArgument{
					"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.threads.Create(p.Context, stringArg(p, "content"), id.ID)
				},
			},
			"updateThread": &graphql.Field{
				Type: threadType,
				Args: graphql.FieldConfigArgument{
					"threadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"content":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.threads.Update(p.Context, stringArg(p, "threadId"), stringArg(p, "content"), id.ID)
				},
			},
			"deleteThread": &graphql.Field{
				Type: threadType,
				Args: graphql.FieldConfigArgument{
					"threadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.threads.Delete(p.Context, stringArg(p, "threadId"), id.ID)
				},
			},
			"addReply": &graphql.Field{
				Type: threadType,
				Args: graphql.FieldConfigArgument{
					"parentThreadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"content":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.threads.AddReply(p.Context, stringArg(p, "parentThreadId"), stringArg(p, "content"), id.ID)
				},
			},
			"addLike": &graphql.Field{
				Type: threadType,
				Args: graphql.FieldConfigArgument{
					"threadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.threads.AddLike(p.Context, stringArg(p, "threadId"), id.ID)
				},
			},
			"removeLike": &graphql.Field{
				Type: threadType,
				Args: graphql.FieldConfigArgument{
					"threadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := requireIdentity(p.Context)
					if err != nil {
						return nil, err
					}
					return r.threads.RemoveLike(p.Context, stringArg(p, "threadId"), id.ID)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func (r *Resolver) resolveUserThreads(p graphql.ResolveParams) (interface{}, error) {
	switch u := p.Source.(type) {
	case *domain.User:
		return r.threads.ListByUser(p.Context, u.ID)
	case domain.User:
		return r.threads.ListByUser(p.Context, u.ID)
	}
	return nil, nil
}

func requireIdentity(ctx context.Context) (*auth.Identity, error) {
	id := auth.IdentityFromContext(ctx)
	if id == nil {
		return nil, apperror.Unauthorized("user not authenticated")
	}
	return id, nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func threadTime(pick func(*domain.Thread) time.Time) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch t := p.Source.(type) {
		case *domain.Thread:
			return pick(t).Format(time.RFC3339), nil
		case domain.Thread:
			return pick(&t).Format(time.RFC3339), nil
		}
		return nil, nil
	}
}
