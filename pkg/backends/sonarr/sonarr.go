// Package sonarr implements the series capability provider over the Sonarr
// v3 REST API.
package sonarr

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/fetcharr/fetcharr/pkg/backends/arr"
	"github.com/fetcharr/fetcharr/pkg/config"
	"github.com/fetcharr/fetcharr/pkg/media"
)

const kind = "series"

// Detail field keys, mapped back to the request shape on submit.
const (
	keyRootFolder     = "sonarr:root_folder"
	keyMonitor        = "sonarr:monitor"
	keySeriesType     = "sonarr:series_type"
	keyQualityProfile = "sonarr:quality_profile"
	keySeasonFolder   = "sonarr:season_folder"
)

// Series is a Sonarr lookup result.
type Series struct {
	// ID is the Sonarr library id; nonzero means the series is already
	// in the library.
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Year         int         `json:"year"`
	TvdbID       int64       `json:"tvdbId"`
	TitleSlug    string      `json:"titleSlug"`
	Overview     string      `json:"overview"`
	RemotePoster string      `json:"remotePoster"`
	Images       []arr.Image `json:"images"`
	Seasons      []Season    `json:"seasons"`
}

// Season is carried through from lookup to the add request.
type Season struct {
	SeasonNumber int  `json:"seasonNumber"`
	Monitored    bool `json:"monitored"`
}

type addSeriesOptions struct {
	IgnoreEpisodesWithFiles      bool   `json:"ignoreEpisodesWithFiles"`
	IgnoreEpisodesWithoutFiles   bool   `json:"ignoreEpisodesWithoutFiles"`
	Monitor                      string `json:"monitor"`
	SearchForCutoffUnmetEpisodes bool   `json:"searchForCutoffUnmetEpisodes"`
	SearchForMissingEpisodes     bool   `json:"searchForMissingEpisodes"`
}

type addSeriesRequest struct {
	Title            string           `json:"title"`
	Year             int              `json:"year"`
	TvdbID           int64            `json:"tvdbId"`
	TitleSlug        string           `json:"titleSlug"`
	Images           []arr.Image      `json:"images"`
	Seasons          []Season         `json:"seasons"`
	QualityProfileID int64            `json:"qualityProfileId"`
	RootFolderPath   string           `json:"rootFolderPath"`
	SeriesType       string           `json:"seriesType"`
	SeasonFolder     bool             `json:"seasonFolder"`
	Monitored        bool             `json:"monitored"`
	AddOptions       addSeriesOptions `json:"addOptions"`
}

type labeled struct{ value, title string }

var monitorOptions = []labeled{
	{"all", "All"},
	{"future", "Future"},
	{"missing", "Missing"},
	{"existing", "Existing"},
	{"firstSeason", "First Season"},
	{"lastSeason", "Last Season"},
	{"latestSeason", "Latest Season"},
	{"pilot", "Pilot"},
	{"recent", "Recent"},
	{"monitorSpecials", "Monitor Specials"},
	{"unmonitorSpecials", "Unmonitor Specials"},
	{"none", "None"},
}

var seriesTypeOptions = []labeled{
	{"standard", "Standard"},
	{"daily", "Daily"},
	{"anime", "Anime"},
}

// Backend is the series capability provider. Immutable after Connect and
// safe for concurrent sessions.
type Backend struct {
	http    *resty.Client
	log     *zap.Logger
	details []media.RequestDetail
}

var _ media.Backend[Series] = (*Backend)(nil)

// Connect builds the Sonarr client, enumerates root folders and quality
// profiles, and applies the configured defaults and restrictions.
func Connect(ctx context.Context, cfg *config.Sonarr, log *zap.Logger) (*Backend, error) {
	log.Info("connecting to sonarr", zap.String("url", cfg.URL))
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

	// Administrators can shrink the monitor menu before any default pin.
	monitor := restrictLabeled(monitorOptions, cfg.AllowedMonitorTypes)
	if len(monitor) == 0 {
		return nil, fmt.Errorf("allowed_monitor_types matches no known monitor type")
	}
	if cfg.Monitor != "" {
		monitor, err = arr.Pin(monitor, func(o labeled) string { return o.value }, cfg.Monitor, "monitor type")
		if err != nil {
			return nil, err
		}
	}

	seriesType := seriesTypeOptions
	if cfg.SeriesType != "" {
		seriesType, err = arr.Pin(seriesType, func(o labeled) string { return o.value }, cfg.SeriesType, "series type")
		if err != nil {
			return nil, err
		}
	}

	return &Backend{
		http:    client,
		log:     log,
		details: buildDetails(rootFolders, monitor, seriesType, qualityProfiles, cfg.SeasonFolders),
	}, nil
}

func restrictLabeled(options []labeled, allowed []string) []labeled {
	if len(allowed) == 0 {
		return options
	}
	values := make([]string, len(options))
	byValue := make(map[string]labeled, len(options))
	for i, o := range options {
		values[i] = o.value
		byValue[o.value] = o
	}
	kept := arr.Restrict(values, allowed)
	out := make([]labeled, len(kept))
	for i, v := range kept {
		out[i] = byValue[v]
	}
	return out
}

func buildDetails(folders []arr.RootFolder, monitor, seriesType []labeled, profiles []arr.QualityProfile, seasonFolders *bool) []media.RequestDetail {
	folderOpts := make([]media.DropdownOption, len(folders))
	for i, f := range folders {
		folderOpts[i] = media.DropdownOption{Title: f.Path, ID: media.IntID(f.ID)}
	}
	monitorOpts := make([]media.DropdownOption, len(monitor))
	for i, m := range monitor {
		monitorOpts[i] = media.DropdownOption{Title: m.title, ID: media.StringID(m.value)}
	}
	typeOpts := make([]media.DropdownOption, len(seriesType))
	for i, t := range seriesType {
		typeOpts[i] = media.DropdownOption{Title: t.title, ID: media.StringID(t.value)}
	}
	profileOpts := make([]media.DropdownOption, len(profiles))
	for i, p := range profiles {
		profileOpts[i] = media.DropdownOption{Title: p.Name, ID: media.IntID(p.ID)}
	}

	// A configured season-folder value pins the boolean; otherwise the
	// user picks yes or no.
	var seasonOpts []media.DropdownOption
	if seasonFolders != nil {
		title := "No"
		if *seasonFolders {
			title = "Yes"
		}
		seasonOpts = []media.DropdownOption{{Title: title, ID: media.BoolID(*seasonFolders)}}
	} else {
		seasonOpts = []media.DropdownOption{
			{Title: "Yes", ID: media.BoolID(true)},
			{Title: "No", ID: media.BoolID(false)},
		}
	}

	return []media.RequestDetail{
		{Title: "Root Folder", Options: folderOpts, Key: keyRootFolder, Type: media.FieldDropdown},
		{Title: "Monitor", Options: monitorOpts, Key: keyMonitor, Type: media.FieldDropdown},
		{Title: "Series Type", Options: typeOpts, Key: keySeriesType, Type: media.FieldDropdown},
		{Title: "Quality Profile", Options: profileOpts, Key: keyQualityProfile, Type: media.FieldDropdown},
		{Title: "Use Season Folders", Options: seasonOpts, Key: keySeasonFolder, Type: media.FieldBoolean},
	}
}

func (b *Backend) Kind() string { return kind }

func (b *Backend) Search(ctx context.Context, term string) ([]Series, error) {
	b.log.Debug("searching sonarr", zap.String("term", term))
	var results []Series
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParam("term", term).
		SetResult(&results).
		Get("/api/v3/series/lookup")
	if err := arr.CheckResponse(kind, "search", resp, err); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Backend) ResultOption(s Series) media.DropdownOption {
	return media.DropdownOption{
		Title:       s.Title,
		Description: fmt.Sprintf("%d", s.Year),
		ID:          media.IntID(s.TvdbID),
	}
}

// EarlyStop never fires for series. An existing series may be partially
// monitored or missing seasons, and Sonarr updates it in place on a
// duplicate add, so the request is always allowed to proceed.
func (b *Backend) EarlyStop(Series) bool { return false }

func (b *Backend) DisplayInfo(s Series) media.DisplayInfo {
	return media.DisplayInfo{
		Title:        s.Title,
		Subtitle:     fmt.Sprintf("%d", s.Year),
		Description:  s.Overview,
		ThumbnailURL: s.RemotePoster,
	}
}

// AdditionalDetails serves the connect-time template. Each session gets its
// own copy since selection reduces option lists in place.
func (b *Backend) AdditionalDetails(_ context.Context, _ Series) ([]media.RequestDetail, error) {
	return media.CloneDetails(b.details), nil
}

type selections struct {
	rootFolderPath   string
	qualityProfileID int64
	monitor          string
	seriesType       string
	seasonFolder     bool
}

func resolve(details []media.RequestDetail) (selections, error) {
	var sel selections
	seenSeason := false
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
		case keySeriesType:
			if chosen.ID.Kind != media.IDString {
				return sel, fmt.Errorf("series type option has no string id")
			}
			sel.seriesType = chosen.ID.Str
		case keySeasonFolder:
			if chosen.ID.Kind != media.IDBool {
				return sel, fmt.Errorf("season folder option has no boolean id")
			}
			sel.seasonFolder = chosen.ID.Bool
			seenSeason = true
		default:
			return sel, fmt.Errorf("unknown detail key %q", d.Key)
		}
	}
	if sel.rootFolderPath == "" || sel.qualityProfileID == 0 || sel.monitor == "" || sel.seriesType == "" || !seenSeason {
		return sel, fmt.Errorf("incomplete detail selection")
	}
	return sel, nil
}

func (b *Backend) Request(ctx context.Context, details []media.RequestDetail, s Series) error {
	sel, err := resolve(details)
	if err != nil {
		return &media.BackendError{Kind: kind, Op: "request", Err: err}
	}

	body := addSeriesRequest{
		Title:            s.Title,
		Year:             s.Year,
		TvdbID:           s.TvdbID,
		TitleSlug:        s.TitleSlug,
		Images:           s.Images,
		Seasons:          s.Seasons,
		QualityProfileID: sel.qualityProfileID,
		RootFolderPath:   sel.rootFolderPath,
		SeriesType:       sel.seriesType,
		SeasonFolder:     sel.seasonFolder,
		Monitored:        sel.monitor != "none",
		AddOptions: addSeriesOptions{
			Monitor:                  sel.monitor,
			SearchForMissingEpisodes: true,
		},
	}

	b.log.Info("requesting series",
		zap.String("title", s.Title),
		zap.Int64("tvdb_id", s.TvdbID),
		zap.String("rootfolder", sel.rootFolderPath),
		zap.Int64("quality_profile_id", sel.qualityProfileID),
		zap.String("monitor", sel.monitor),
		zap.String("series_type", sel.seriesType),
		zap.Bool("season_folder", sel.seasonFolder),
	)

	resp, err := b.http.R().SetContext(ctx).SetBody(body).Post("/api/v3/series")
	return arr.CheckResponse(kind, "request", resp, err)
}

func (b *Backend) SuccessMessage(_ []media.RequestDetail, s Series) media.SuccessMessage {
	return media.SuccessMessage{
		Title:        "Request Successful",
		Description:  fmt.Sprintf("%s (%d) has been requested and will be downloaded when available.", s.Title, s.Year),
		ThumbnailURL: s.RemotePoster,
	}
}
