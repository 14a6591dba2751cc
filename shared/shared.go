package shared

import (
	"context"
	"fmt"
	"hash/fnv"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"guide/shared/cache"
	"guide/shared/constant"
	"guide/shared/dto"
	"guide/shared/timezone"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// BuildCacheKey joins key segments with ":".
func BuildCacheKey(segments ...string) string {
	return strings.Join(segments, ":")
}

// BuildCacheKeyWithQuery derives a cache key from a listing query so each
// page/filter combination caches independently under a common prefix.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	hash := fnv.New32a()
	hash.Write([]byte(where))

	argNames := slices.Sorted(maps.Keys(args))
	for _, name := range argNames {
		fmt.Fprintf(hash, "%s=%v;", name, args[name])
	}

	return BuildCacheKey(
		prefix,
		strconv.Itoa(params.Page),
		strconv.Itoa(params.Limit),
		params.SortBy,
		params.SortDir,
		strconv.FormatUint(uint64(hash.Sum32()), 16),
	)
}

// InvalidateCaches drops every cached entry under the given prefix,
// logging instead of failing since staleness resolves via TTL anyway.
func InvalidateCaches(ctx context.Context, c cache.Cache, prefix string) {
	if err := c.DeletePrefix(ctx, prefix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache prefix")
	}
}

// TransformFields converts the non-zero fields of a struct into a map of
// updated columns, stamping updated_at.
func TransformFields(data interface{}) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldUpdatedAt] = timezone.Now()

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}
