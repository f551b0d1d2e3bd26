// Package radarr implements the movie capability provider over the Radarr
// v3 REST API.
package radarr

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/fetcharr/fetcharr/pkg/backends/arr"
	"github.com/fetcharr/fetcharr/pkg/config"
	"github.com/fetcharr/fetcharr/pkg/media"
)

const kind = "movie"

// Detail field keys, mapped back to the request shape on submit.
const (
	keyRootFolder     = "radarr:root_folder"
	keyMonitor        = "radarr:monitor"
	keyAvailability   = "radarr:availability"
	keyQualityProfile = "radarr:quality_profile"
)

// Movie is a Radarr lookup result, carrying the fields needed to render it
// and to add it to the library later.
type Movie struct {
	// ID is the Radarr library id; nonzero means the movie is already
	// in the library.
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Year         int         `json:"year"`
	TmdbID       int64       `json:"tmdbId"`
	TitleSlug    string      `json:"titleSlug"`
	Overview     string      `json:"overview"`
	RemotePoster string      `json:"remotePoster"`
	Images       []arr.Image `json:"images"`
}

type addMovieOptions struct {
	Monitor        string `json:"monitor"`
	SearchForMovie bool   `json:"searchForMovie"`
}

type addMovieRequest struct {
	Title               string          `json:"title"`
	Year                int             `json:"year"`
	TmdbID              int64           `json:"tmdbId"`
	TitleSlug           string          `json:"titleSlug"`
	Images              []arr.Image     `json:"images"`
	QualityProfileID    int64           `json:"qualityProfileId"`
	RootFolderPath      string          `json:"rootFolderPath"`
	MinimumAvailability string          `json:"minimumAvailability"`
	Monitored           bool            `json:"monitored"`
	AddOptions          addMovieOptions `json:"addOptions"`
}

// monitorOption pairs a wire value with its user-facing title.
type monitorOption struct{ value, title string }

var monitorOptions = []monitorOption{
	{"movieAndCollection", "Movie and Collection"},
	{"movieOnly", "Movie Only"},
	{"none", "None"},
}

var availabilityOptions = []monitorOption{
	{"tba", "To Be Announced"},
	{"announced", "Announced"},
	{"inCinemas", "In Cinemas"},
	{"released", "Released"},
	{"deleted", "Deleted"},
}

// Backend is the movie capability provider. Immutable after Connect and
// safe for concurrent sessions.
type Backend struct {
	http    *resty.Client
	log     *zap.Logger
	details []media.RequestDetail
}

var _ media.Backend[Movie] = (*Backend)(nil)

// Connect builds the Radarr client, enumerates root folders and quality
// profiles, and applies the configured defaults. Fails when the server is
// unreachable or a configured value does not exist upstream.
func Connect(ctx context.Context, cfg *config.Radarr, log *zap.Logger) (*Backend, error) {
	log.Info("connecting to radarr", zap.String("url", cfg.URL))
	client := arr.NewClient(cfg.URL, cfg.APIKey)

	var rootFolders []arr.RootFolder
	resp, err := client.R().SetContext(ctx).SetResult(&rootFolders).Get("/api/v3/rootfolder")
	if err := arr.CheckResponse(kind, "connect", resp, err); err != nil {
		return nil, err
	}

	var qualityProfiles []arr.QualityProfile
	resp, err = client.R().SetContext(ctx).SetResult(&qualityProfiles).Get("/api/v3/qualityprofile")
	if err := arr.CheckResponse(kind, "connect", resp, err); err != nil {
		return nil, err
	}

	if cfg.RootFolder != "" {
		rootFolders, err = arr.Pin(rootFolders, func(f arr.RootFolder) string { return f.Path }, cfg.RootFolder, "root folder")
		if err != nil {
			return nil, err
		}
	}
	if cfg.QualityProfile != "" {
		qualityProfiles, err = arr.Pin(qualityProfiles, func(p arr.QualityProfile) string { return p.Name }, cfg.QualityProfile, "quality profile")
		if err != nil {
			return nil, err
		}
	}

	monitor := monitorOptions
	if cfg.Monitor != "" {
		monitor, err = arr.Pin(monitor, func(o monitorOption) string { return o.value }, cfg.Monitor, "monitor type")
		if err != nil {
			return nil, err
		}
	}
	availability := availabilityOptions
	if cfg.MinimumAvailability != "" {
		availability, err = arr.Pin(availability, func(o monitorOption) string { return o.value }, cfg.MinimumAvailability, "minimum availability")
		if err != nil {
			return nil, err
		}
	}

	return &Backend{
		http:    client,
		log:     log,
		details: buildDetails(rootFolders, monitor, availability, qualityProfiles),
	}, nil
}

func buildDetails(folders []arr.RootFolder, monitor, availability []monitorOption, profiles []arr.QualityProfile) []media.RequestDetail {
	folderOpts := make([]media.DropdownOption, len(folders))
	for i, f := range folders {
		folderOpts[i] = media.DropdownOption{Title: f.Path, ID: media.IntID(f.ID)}
	}
	monitorOpts := make([]media.DropdownOption, len(monitor))
	for i, m := range monitor {
		monitorOpts[i] = media.DropdownOption{Title: m.title, ID: media.StringID(m.value)}
	}
	availabilityOpts := make([]media.DropdownOption, len(availability))
	for i, a := range availability {
		availabilityOpts[i] = media.DropdownOption{Title: a.title, ID: media.StringID(a.value)}
	}
	profileOpts := make([]media.DropdownOption, len(profiles))
	for i, p := range profiles {
		profileOpts[i] = media.DropdownOption{Title: p.Name, ID: media.IntID(p.ID)}
	}

	return []media.RequestDetail{
		{Title: "Root Folder", Options: folderOpts, Key: keyRootFolder, Type: media.FieldDropdown},
		{Title: "Monitor", Options: monitorOpts, Key: keyMonitor, Type: media.FieldDropdown},
		{Title: "Minimum Availability", Options: availabilityOpts, Key: keyAvailability, Type: media.FieldDropdown},
		{Title: "Quality Profile", Options: profileOpts, Key: keyQualityProfile, Type: media.FieldDropdown},
	}
}

func (b *Backend) Kind() string { return kind }

func (b *Backend) Search(ctx context.Context, term string) ([]Movie, error) {
	b.log.Debug("searching radarr", zap.String("term", term))
	var results []Movie
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParam("term", term).
		SetResult(&results).
		Get("/api/v3/movie/lookup")
	if err := arr.CheckResponse(kind, "search", resp, err); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Backend) ResultOption(m Movie) media.DropdownOption {
	return media.DropdownOption{
		Title:       m.Title,
		Description: fmt.Sprintf("%d", m.Year),
		ID:          media.IntID(m.TmdbID),
	}
}

// EarlyStop is true when the movie already has a library id: there is
// nothing left to request.
func (b *Backend) EarlyStop(m Movie) bool { return m.ID != 0 }

func (b *Backend) DisplayInfo(m Movie) media.DisplayInfo {
	return media.DisplayInfo{
		Title:        m.Title,
		Subtitle:     fmt.Sprintf("%d", m.Year),
		Description:  m.Overview,
		ThumbnailURL: m.RemotePoster,
	}
}

// AdditionalDetails serves the connect-time template. Each session gets its
// own copy since selection reduces option lists in place.
func (b *Backend) AdditionalDetails(_ context.Context, _ Movie) ([]media.RequestDetail, error) {
	return media.CloneDetails(b.details), nil
}

type selections struct {
	rootFolderPath      string
	qualityProfileID    int64
	monitor             string
	minimumAvailability string
}

func resolve(details []media.RequestDetail) (selections, error) {
	var sel selections
	for _, d := range details {
		if len(d.Options) != 1 {
			return sel, fmt.Errorf("detail %q is not resolved", d.Title)
		}
		chosen := d.Options[0]
		switch d.Key {
		case keyRootFolder:
			sel.rootFolderPath = chosen.Title
		case keyQualityProfile:
			if chosen.ID.Kind != media.IDInt {
				return sel, fmt.Errorf("quality profile option has no integer id")
			}
			sel.qualityProfileID = chosen.ID.Int
		case keyMonitor:
			if chosen.ID.Kind != media.IDString {
				return sel, fmt.Errorf("monitor option has no string id")
			}
			sel.monitor = chosen.ID.Str
		case keyAvailability:
			if chosen.ID.Kind != media.IDString {
				return sel, fmt.Errorf("availability option has no string id")
			}
			sel.minimumAvailability = chosen.ID.Str
		default:
			return sel, fmt.Errorf("unknown detail key %q", d.Key)
		}
	}
	if sel.rootFolderPath == "" || sel.qualityProfileID == 0 || sel.monitor == "" || sel.minimumAvailability == "" {
		return sel, fmt.Errorf("incomplete detail selection")
	}
	return sel, nil
}

func (b *Backend) Request(ctx context.Context, details []media.RequestDetail, m Movie) error {
	sel, err := resolve(details)
	if err != nil {
		return &media.BackendError{Kind: kind, Op: "request", Err: err}
	}

	body := addMovieRequest{
		Title:               m.Title,
		Year:                m.Year,
		TmdbID:              m.TmdbID,
		TitleSlug:           m.TitleSlug,
		Images:              m.Images,
		QualityProfileID:    sel.qualityProfileID,
		RootFolderPath:      sel.rootFolderPath,
		MinimumAvailability: sel.minimumAvailability,
		Monitored:           sel.monitor != "none",
		AddOptions: addMovieOptions{
			Monitor:        sel.monitor,
			SearchForMovie: true,
		},
	}

	b.log.Info("requesting movie",
		zap.String("title", m.Title),
		zap.Int64("tmdb_id", m.TmdbID),
		zap.String("rootfolder", sel.rootFolderPath),
		zap.Int64("quality_profile_id", sel.qualityProfileID),
		zap.String("monitor", sel.monitor),
		zap.String("minimum_availability", sel.minimumAvailability),
	)

	resp, err := b.http.R().SetContext(ctx).SetBody(body).Post("/api/v3/movie")
	return arr.CheckResponse(kind, "request", resp, err)
}

func (b *Backend) SuccessMessage(_ []media.RequestDetail, m Movie) media.SuccessMessage {
	return media.SuccessMessage{
		Title:        "Request Successful",
		Description:  fmt.Sprintf("%s (%d) has been requested and will be downloaded when available.", m.Title, m.Year),
		ThumbnailURL: m.RemotePoster,
	}
}
