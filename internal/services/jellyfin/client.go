package jellyfin

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"jtools/internal/catalog"
	"jtools/internal/logging"
	"jtools/internal/services"
)

const (
	component = "jellyfin"

	defaultTimeout       = 30 * time.Second
	defaultMutationDelay = 100 * time.Millisecond
	defaultRequestRate   = 20
	defaultRequestBurst  = 5
	defaultClientName    = "jtools"
	defaultDeviceName    = "jtools-cli"
	defaultVersion       = "dev"

	movieFields    = "Genres,People,UserData,Overview,Path,FileName,DateCreated,MediaSources,Size,Container,Width,Height,AspectRatio,Bitrate,VideoCodec,AudioCodec,DateModified"
	favoriteFields = "Genres,People,UserData,Overview"
	personFields   = "PrimaryImageAspectRatio,SortName"

	libraryPageSize = 500
	peoplePageSize  = 100
	searchLimit     = 10
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	DeviceID string
	Version  string
	// MutationDelay is the pause after every favorite toggle.
	MutationDelay time.Duration
	// RequestsPerSecond caps the overall request rate; zero uses the default.
	RequestsPerSecond float64
	HTTPClient        HTTPDoer
	Logger            *slog.Logger
}

// Client talks to the Jellyfin REST API and implements catalog.Catalog.
type Client struct {
	baseURL       string
	apiKey        string
	authorization string
	client        HTTPDoer
	limiter       *rate.Limiter
	mutationDelay time.Duration
	sleep         func(context.Context, time.Duration) error
	logger        *slog.Logger
}

var _ catalog.Catalog = (*Client)(nil)

// New constructs a Client. BaseURL and APIKey are expected to be validated by
// the caller.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	delay := opts.MutationDelay
	if delay < defaultMutationDelay {
		delay = defaultMutationDelay
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestRate
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = defaultVersion
	}
	deviceID := strings.TrimSpace(opts.DeviceID)
	if deviceID == "" {
		deviceID = defaultDeviceName
	}
	return &Client{
		baseURL:       strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		apiKey:        strings.TrimSpace(opts.APIKey),
		authorization: authorizationHeader(defaultClientName, defaultDeviceName, deviceID, version),
		client:        httpClient,
		limiter:       rate.NewLimiter(rate.Limit(rps), defaultRequestBurst),
		mutationDelay: delay,
		sleep:         sleepContext,
		logger:        componentLogger(opts.Logger),
	}
}

// ServerURL returns the normalized server base URL.
func (c *Client) ServerURL() string {
	return c.baseURL
}

// TestConnection checks that the server answers an authenticated request.
func (c *Client) TestConnection(ctx context.Context) error {
	var info catalog.SystemInfo
	if err := c.do(ctx, http.MethodGet, "System/Info", nil, "test connection", &info); err != nil {
		return err
	}
	c.logger.Debug("jellyfin server reachable",
		logging.String("server_name", info.ServerName),
		logging.String("server_version", info.Version),
	)
	return nil
}

// ListUsers returns every user visible to the token.
func (c *Client) ListUsers(ctx context.Context) ([]catalog.User, error) {
	var users []catalog.User
	if err := c.do(ctx, http.MethodGet, "Users", nil, "list users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListAllMovies returns the user's whole movie library with technical fields.
func (c *Client) ListAllMovies(ctx context.Context, userID string) ([]catalog.Movie, error) {
	query := url.Values{}
	query.Set("IncludeItemTypes", "Movie")
	query.Set("Fields", movieFields)
	query.Set("Recursive", "true")
	query.Set("SortBy", "SortName")
	query.Set("SortOrder", "Ascending")
	return fetchAll[catalog.Movie](ctx, c, userItemsPath(userID), query, libraryPageSize, "list movies")
}

// ListFavoriteMovies returns the movies the user marked as favorite.
func (c *Client) ListFavoriteMovies(ctx context.Context, userID string) ([]catalog.Movie, error) {
	query := url.Values{}
	query.Set("IncludeItemTypes", "Movie")
	query.Set("Filters", "IsFavorite")
	query.Set("Fields", favoriteFields)
	query.Set("Recursive", "true")
	return fetchAll[catalog.Movie](ctx, c, userItemsPath(userID), query, libraryPageSize, "list favorite movies")
}

// ListFavoritePeople returns the people the user marked as favorite.
func (c *Client) ListFavoritePeople(ctx context.Context, userID string) ([]catalog.Person, error) {
	query := url.Values{}
	query.Set("Fields", personFields)
	query.Set("ImageTypeLimit", "1")
	query.Set("Recursive", "true")
	query.Set("IsFavorite", "true")
	query.Set("SortBy", "SortName")
	query.Set("SortOrder", "Ascending")
	query.Set("userId", userID)
	return fetchAll[catalog.Person](ctx, c, "Persons", query, peoplePageSize, "list favorite people")
}

// SetMovieFavorite marks or unmarks a movie as favorite.
func (c *Client) SetMovieFavorite(ctx context.Context, userID, movieID string, favorite bool) error {
	return c.setFavorite(ctx, userID, movieID, favorite, "set movie favorite")
}

// SetPersonFavorite marks or unmarks a person as favorite.
func (c *Client) SetPersonFavorite(ctx context.Context, userID, personID string, favorite bool) error {
	return c.setFavorite(ctx, userID, personID, favorite, "set person favorite")
}

func (c *Client) setFavorite(ctx context.Context, userID, itemID string, favorite bool, operation string) error {
	if strings.TrimSpace(itemID) == "" {
		return services.Wrap(services.ErrNotFound, component, operation, "item id is empty", nil)
	}
	method := http.MethodPost
	if !favorite {
		method = http.MethodDelete
	}
	endpoint := "Users/" + url.PathEscape(userID) + "/FavoriteItems/" + url.PathEscape(itemID)
	err := c.do(ctx, method, endpoint, nil, operation, nil)
	if sleepErr := c.sleep(ctx, c.mutationDelay); err == nil && sleepErr != nil {
		return services.Wrap(services.ErrConnectivity, component, operation, "pacing interrupted", sleepErr)
	}
	return err
}

// SearchMoviesByName runs a server-side search for movies matching name.
func (c *Client) SearchMoviesByName(ctx context.Context, name string) ([]catalog.Movie, error) {
	query := searchQuery(name, "Movie", favoriteFields)
	var resp catalog.ItemsResponse[catalog.Movie]
	if err := c.do(ctx, http.MethodGet, "Items", query, "search movies", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SearchPeopleByName runs a server-side search for people matching name.
func (c *Client) SearchPeopleByName(ctx context.Context, name string) ([]catalog.Person, error) {
	query := searchQuery(name, "Person", "UserData")
	var resp catalog.ItemsResponse[catalog.Person]
	if err := c.do(ctx, http.MethodGet, "Items", query, "search people", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func searchQuery(name, itemType, fields string) url.Values {
	query := url.Values{}
	query.Set("searchTerm", name)
	query.Set("IncludeItemTypes", itemType)
	query.Set("Fields", fields)
	query.Set("Recursive", "true")
	query.Set("Limit", strconv.Itoa(searchLimit))
	return query
}

func userItemsPath(userID string) string {
	return "Users/" + url.PathEscape(userID) + "/Items"
}

// fetchAll pages through an item query until the server reports no more records.
func fetchAll[T any](ctx context.Context, c *Client, endpoint string, base url.Values, pageSize int, operation string) ([]T, error) {
	var all []T
	for start := 0; ; {
		query := url.Values{}
		for key, values := range base {
			query[key] = values
		}
		query.Set("StartIndex", strconv.Itoa(start))
		query.Set("Limit", strconv.Itoa(pageSize))

		var page catalog.ItemsResponse[T]
		if err := c.do(ctx, http.MethodGet, endpoint, query, operation, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		start += len(page.Items)
		if len(page.Items) == 0 || len(page.Items) < pageSize || start >= page.TotalRecordCount {
			break
		}
	}
	return all, nil
}
