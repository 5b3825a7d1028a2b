package book

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outliers() Record {
	return Record{
		ExternalID: "ialrgIT41OAC",
		Title:      "Outliers",
		Subtitle:   "The Story of Success",
		Authors:    []string{"Malcolm Gladwell"},
		Categories: []string{"Psychology"},
		Publisher:  "Penguin UK",
	}
}

func TestRecord_Normalize(t *testing.T) {
	t.Run("缺少作者和分类时使用占位标签", func(t *testing.T) {
		rec := outliers()
		rec.Authors = nil
		rec.Categories = []string{"", "  "}

		out, err := rec.Normalize()
		require.NoError(t, err)
		assert.Equal(t, []string{SentinelLabel}, out.Authors)
		assert.Equal(t, []string{SentinelLabel}, out.Categories)
	})

	t.Run("缺少封面时使用默认图", func(t *testing.T) {
		out, err := outliers().Normalize()
		require.NoError(t, err)
		assert.Equal(t, DefaultCoverURL, out.CoverURL)
	})

	t.Run("标签去空白去重，区分大小写", func(t *testing.T) {
		rec := outliers()
		rec.Authors = []string{" Malcolm Gladwell", "Malcolm Gladwell ", "malcolm gladwell"}

		out, err := rec.Normalize()
		require.NoError(t, err)
		assert.Equal(t, []string{"Malcolm Gladwell", "malcolm gladwell"}, out.Authors)
	})

	t.Run("必填字段", func(t *testing.T) {
		for _, mutate := range []func(*Record){
			func(r *Record) { r.ExternalID = " " },
			func(r *Record) { r.Title = "" },
			func(r *Record) { r.Publisher = "" },
		} {
			rec := outliers()
			mutate(&rec)
			_, err := rec.Normalize()
			assert.ErrorIs(t, err, ErrInvalidRecord)
		}
	})

	t.Run("字段过长", func(t *testing.T) {
		rec := outliers()
		rec.ExternalID = strings.Repeat("x", MaxExternalIDLength+1)
		_, err := rec.Normalize()
		assert.ErrorIs(t, err, ErrInvalidRecord)

		rec = outliers()
		rec.Categories = []string{strings.Repeat("c", MaxLabelLength+1)}
		_, err = rec.Normalize()
		assert.ErrorIs(t, err, ErrInvalidRecord)

		// 按字符计数，不按字节
		rec = outliers()
		rec.Title = strings.Repeat("书", MaxLabelLength)
		_, err = rec.Normalize()
		assert.NoError(t, err)
	})

	t.Run("不修改原记录", func(t *testing.T) {
		rec := outliers()
		rec.Authors = []string{" A "}
		_, err := rec.Normalize()
		require.NoError(t, err)
		assert.Equal(t, []string{" A "}, rec.Authors)
	})
}
