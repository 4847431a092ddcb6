package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowWithImages_Backdrop_PicksHighestRated(t *testing.T) {
	s := &ShowWithImages{
		Show: Show{ID: 1, Title: "The Expanse"},
		Images: []ShowImage{
			{ID: 1, Kind: ImageKindBackdrop, URL: "a.jpg", Rating: 4.1},
			{ID: 2, Kind: ImageKindBackdrop, URL: "b.jpg", Rating: 8.7},
			{ID: 3, Kind: ImageKindPoster, URL: "c.jpg", Rating: 9.9},
			{ID: 4, Kind: ImageKindBackdrop, URL: "d.jpg", Rating: 6.0},
		},
	}

	backdrop := s.Backdrop()
	require.NotNil(t, backdrop)
	assert.Equal(t, "b.jpg", backdrop.URL)

	// Cached on second access
	assert.Same(t, backdrop, s.Backdrop())
}

func TestShowWithImages_Poster_PicksHighestRated(t *testing.T) {
	s := &ShowWithImages{
		Show: Show{ID: 1},
		Images: []ShowImage{
			{ID: 1, Kind: ImageKindPoster, URL: "low.jpg", Rating: 2.0},
			{ID: 2, Kind: ImageKindPoster, URL: "high.jpg", Rating: 7.5},
		},
	}

	poster := s.Poster()
	require.NotNil(t, poster)
	assert.Equal(t, "high.jpg", poster.URL)
}

func TestShowWithImages_NoImageOfKind(t *testing.T) {
	s := &ShowWithImages{
		Show: Show{ID: 1},
		Images: []ShowImage{
			{ID: 1, Kind: ImageKindPoster, URL: "p.jpg", Rating: 5.0},
		},
	}

	assert.Nil(t, s.Backdrop())
	require.NotNil(t, s.Poster())
}

func TestShowWithImages_Equal(t *testing.T) {
	now := time.Now()
	images := []ShowImage{
		{ID: 1, Kind: ImageKindPoster, URL: "p.jpg", Rating: 5.0},
		{ID: 2, Kind: ImageKindBackdrop, URL: "b.jpg", Rating: 3.0},
	}

	a := &ShowWithImages{Show: Show{ID: 1, TraktID: 100, Title: "Dark", UpdatedAt: now}, Images: images}
	b := &ShowWithImages{Show: Show{ID: 1, TraktID: 100, Title: "Dark", UpdatedAt: now}, Images: images}
	assert.True(t, a.Equal(b))

	// Derived caches do not affect equality
	a.Backdrop()
	assert.True(t, a.Equal(b))

	// Different show
	c := &ShowWithImages{Show: Show{ID: 2, TraktID: 200, Title: "Lost", UpdatedAt: now}, Images: images}
	assert.False(t, a.Equal(c))

	// Same images, different order
	reversed := []ShowImage{images[1], images[0]}
	d := &ShowWithImages{Show: Show{ID: 1, TraktID: 100, Title: "Dark", UpdatedAt: now}, Images: reversed}
	assert.False(t, a.Equal(d))

	assert.False(t, a.Equal(nil))
}
