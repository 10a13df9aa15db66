package routing

func removeDuplicates[T comparable](arr []T) []T {
	set := make(map[T]struct{})
	newarr := make([]T, 0, len(arr))

	for _, v := range arr {
		if _, ok := set[v]; !ok {
			set[v] = struct{}{}
			newarr = append(newarr, v)
		}
	}
	return newarr
}
