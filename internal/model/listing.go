package model

// ListFilter 列表查询条件；Page/Limit 为 nil 表示未提供或非数字
type ListFilter struct {
	Category string
	Keyword  string
	Page     *int
	Limit    *int
}

// ListResult 列表结果；NextPage/PreviousPage 不存在时整个字段省略
type ListResult struct {
	TotalPosts   int64        `json:"totalPosts"`
	TotalPages   int64        `json:"totalPages"`
	CurrentPage  int          `json:"currentPage"`
	Limit        int          `json:"limit"`
	Posts        []ListedPost `json:"posts"`
	NextPage     *int         `json:"nextPage,omitempty"`
	PreviousPage *int         `json:"previousPage,omitempty"`
}
