package catalog

// User is a Jellyfin account.
type User struct {
	ID                        string  `json:"Id"`
	Name                      string  `json:"Name"`
	ServerID                  *string `json:"ServerId,omitempty"`
	HasPassword               bool    `json:"HasPassword,omitempty"`
	HasConfiguredPassword     bool    `json:"HasConfiguredPassword,omitempty"`
	HasConfiguredEasyPassword bool    `json:"HasConfiguredEasyPassword,omitempty"`
	EnableAutoLogin           bool    `json:"EnableAutoLogin,omitempty"`
	LastLoginDate             *string `json:"LastLoginDate,omitempty"`
	LastActivityDate          *string `json:"LastActivityDate,omitempty"`
}

// UserData carries per-user item state such as the favorite flag.
type UserData struct {
	IsFavorite            bool    `json:"IsFavorite,omitempty"`
	Played                bool    `json:"Played,omitempty"`
	PlayCount             int     `json:"PlayCount,omitempty"`
	PlaybackPositionTicks int64   `json:"PlaybackPositionTicks,omitempty"`
	LastPlayedDate        *string `json:"LastPlayedDate,omitempty"`
}

// PersonRef is a cast or crew credit embedded in a movie.
type PersonRef struct {
	ID              *string `json:"Id,omitempty"`
	Name            string  `json:"Name"`
	Role            *string `json:"Role,omitempty"`
	Type            *string `json:"Type,omitempty"`
	PrimaryImageTag *string `json:"PrimaryImageTag,omitempty"`
}

// MediaStream is one elementary stream of a media source.
type MediaStream struct {
	Index        int     `json:"Index"`
	Codec        *string `json:"Codec,omitempty"`
	Type         *string `json:"Type,omitempty"`
	Width        *int    `json:"Width,omitempty"`
	Height       *int    `json:"Height,omitempty"`
	BitRate      *int64  `json:"BitRate,omitempty"`
	Language     *string `json:"Language,omitempty"`
	DisplayTitle *string `json:"DisplayTitle,omitempty"`
}

// IsVideo reports whether the stream is tagged as a video stream.
func (s MediaStream) IsVideo() bool {
	return s.Type != nil && *s.Type == StreamTypeVideo
}

// StreamTypeVideo is the Jellyfin stream type for video streams.
const StreamTypeVideo = "Video"

// MediaSource is a playable file backing a movie.
type MediaSource struct {
	ID           string        `json:"Id"`
	Name         *string       `json:"Name,omitempty"`
	Path         *string       `json:"Path,omitempty"`
	Size         *int64        `json:"Size,omitempty"`
	Container    *string       `json:"Container,omitempty"`
	Bitrate      *int64        `json:"Bitrate,omitempty"`
	VideoType    *string       `json:"VideoType,omitempty"`
	Width        *int          `json:"Width,omitempty"`
	Height       *int          `json:"Height,omitempty"`
	AspectRatio  *string       `json:"AspectRatio,omitempty"`
	VideoCodec   *string       `json:"VideoCodec,omitempty"`
	AudioCodec   *string       `json:"AudioCodec,omitempty"`
	MediaStreams []MediaStream `json:"MediaStreams,omitempty"`
}

// FirstVideoStream returns the first stream typed as video.
func (m MediaSource) FirstVideoStream() (MediaStream, bool) {
	for _, stream := range m.MediaStreams {
		if stream.IsVideo() {
			return stream, true
		}
	}
	return MediaStream{}, false
}

// Movie is a library movie item. The ID is only meaningful on the server that
// issued it; Name is the key used to re-match items across servers.
type Movie struct {
	ID              string        `json:"Id"`
	Name            string        `json:"Name"`
	OriginalTitle   *string       `json:"OriginalTitle,omitempty"`
	Overview        *string       `json:"Overview,omitempty"`
	ProductionYear  *int          `json:"ProductionYear,omitempty"`
	Genres          []string      `json:"Genres,omitempty"`
	CommunityRating *float64      `json:"CommunityRating,omitempty"`
	RunTimeTicks    *int64        `json:"RunTimeTicks,omitempty"`
	UserData        *UserData     `json:"UserData,omitempty"`
	People          []PersonRef   `json:"People,omitempty"`
	Path            *string       `json:"Path,omitempty"`
	FileName        *string       `json:"FileName,omitempty"`
	Size            *int64        `json:"Size,omitempty"`
	Container       *string       `json:"Container,omitempty"`
	MediaSources    []MediaSource `json:"MediaSources,omitempty"`
	Width           *int          `json:"Width,omitempty"`
	Height          *int          `json:"Height,omitempty"`
	AspectRatio     *string       `json:"AspectRatio,omitempty"`
	Bitrate         *int64        `json:"Bitrate,omitempty"`
	VideoCodec      *string       `json:"VideoCodec,omitempty"`
	AudioCodec      *string       `json:"AudioCodec,omitempty"`
	DateCreated     *string       `json:"DateCreated,omitempty"`
	DateModified    *string       `json:"DateModified,omitempty"`
}

// PrimarySource returns the first media source when one exists.
func (m Movie) PrimarySource() (MediaSource, bool) {
	if len(m.MediaSources) == 0 {
		return MediaSource{}, false
	}
	return m.MediaSources[0], true
}

// EffectiveSize returns the movie size, falling back to the first media source.
func (m Movie) EffectiveSize() (int64, bool) {
	if m.Size != nil {
		return *m.Size, true
	}
	if src, ok := m.PrimarySource(); ok && src.Size != nil {
		return *src.Size, true
	}
	return 0, false
}

// EffectiveBitrate returns the movie bitrate, falling back to the first media source.
func (m Movie) EffectiveBitrate() (int64, bool) {
	if m.Bitrate != nil {
		return *m.Bitrate, true
	}
	if src, ok := m.PrimarySource(); ok && src.Bitrate != nil {
		return *src.Bitrate, true
	}
	return 0, false
}

// EffectiveContainer returns the movie container, falling back to the first media source.
func (m Movie) EffectiveContainer() (string, bool) {
	if m.Container != nil && *m.Container != "" {
		return *m.Container, true
	}
	if src, ok := m.PrimarySource(); ok && src.Container != nil && *src.Container != "" {
		return *src.Container, true
	}
	return "", false
}

// EffectiveVideoCodec returns the video codec from the movie, the first media
// source, or that source's first video stream, in that order.
func (m Movie) EffectiveVideoCodec() (string, bool) {
	if m.VideoCodec != nil && *m.VideoCodec != "" {
		return *m.VideoCodec, true
	}
	src, ok := m.PrimarySource()
	if !ok {
		return "", false
	}
	if src.VideoCodec != nil && *src.VideoCodec != "" {
		return *src.VideoCodec, true
	}
	if stream, ok := src.FirstVideoStream(); ok && stream.Codec != nil && *stream.Codec != "" {
		return *stream.Codec, true
	}
	return "", false
}

// Person is a standalone person item (actor, director, ...).
type Person struct {
	ID              string    `json:"Id"`
	Name            string    `json:"Name"`
	Type            *string   `json:"Type,omitempty"`
	Role            *string   `json:"Role,omitempty"`
	PrimaryImageTag *string   `json:"PrimaryImageTag,omitempty"`
	UserData        *UserData `json:"UserData,omitempty"`
}

// ItemsResponse is the paged wrapper Jellyfin returns for item queries.
type ItemsResponse[T any] struct {
	Items            []T `json:"Items"`
	TotalRecordCount int `json:"TotalRecordCount"`
	StartIndex       int `json:"StartIndex"`
}

// SystemInfo is the subset of /System/Info used for connection checks.
type SystemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}

// Ptr returns a pointer to v. It keeps fixture and literal construction short.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the pointed-to value or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
