// Package navigation gates every view route on the session's authentication
// and role, and sets the page title.
package navigation

// RouteRequirement is the static access metadata of a route
type RouteRequirement struct {
	RequiresAuth      bool
	RequiresModerator bool
	Title             string
}

// Route is one view in the route table
type Route struct {
	Name    string
	Pattern string
	RouteRequirement
}

// Route names
const (
	RouteHome           = "home"
	RouteCompanies      = "companies"
	RouteCompanyDetail  = "company-detail"
	RouteReviewCreate   = "review-create"
	RouteReviewDetail   = "review-detail"
	RouteProfile        = "profile"
	RouteMyReviews      = "my-reviews"
	RouteLogin          = "login"
	RouteRegister       = "register"
	RouteAdminDashboard = "admin-dashboard"
	RouteAdminReviews   = "admin-reviews"
	RouteAdminComments  = "admin-comments"
	RouteAdminReports   = "admin-reports"
)

const (
	HomePath  = "/"
	LoginPath = "/auth/login"
)

// group is a parent route whose requirements its children inherit
type group struct {
	prefix   string
	meta     RouteRequirement
	children []Route
}

var table = []group{
	{
		prefix: "",
		children: []Route{
			{Name: RouteHome, Pattern: "/", RouteRequirement: RouteRequirement{Title: "Home"}},
			{Name: RouteCompanies, Pattern: "/companies", RouteRequirement: RouteRequirement{Title: "Companies"}},
			{Name: RouteCompanyDetail, Pattern: "/companies/{id}", RouteRequirement: RouteRequirement{Title: "Company Details"}},
			{Name: RouteReviewCreate, Pattern: "/reviews/create", RouteRequirement: RouteRequirement{Title: "Write a Review", RequiresAuth: true}},
			{Name: RouteReviewDetail, Pattern: "/reviews/{id}", RouteRequirement: RouteRequirement{Title: "Review Details"}},
			{Name: RouteProfile, Pattern: "/profile", RouteRequirement: RouteRequirement{Title: "Profile", RequiresAuth: true}},
			{Name: RouteMyReviews, Pattern: "/my-reviews", RouteRequirement: RouteRequirement{Title: "My Reviews", RequiresAuth: true}},
		},
	},
	{
		// Login and register carry no requirement, so logged in users are not bounced
		prefix: "/auth",
		children: []Route{
			{Name: RouteLogin, Pattern: "/login", RouteRequirement: RouteRequirement{Title: "Log In"}},
			{Name: RouteRegister, Pattern: "/register", RouteRequirement: RouteRequirement{Title: "Register"}},
		},
	},
	{
		prefix: "/admin",
		meta:   RouteRequirement{RequiresAuth: true, RequiresModerator: true},
		children: []Route{
			{Name: RouteAdminDashboard, Pattern: "", RouteRequirement: RouteRequirement{Title: "Moderation Dashboard"}},
			{Name: RouteAdminReviews, Pattern: "/reviews", RouteRequirement: RouteRequirement{Title: "Review Moderation"}},
			{Name: RouteAdminComments, Pattern: "/comments", RouteRequirement: RouteRequirement{Title: "Comment Moderation"}},
			{Name: RouteAdminReports, Pattern: "/reports", RouteRequirement: RouteRequirement{Title: "Reports"}},
		},
	},
}

// Routes returns the flattened route table with group requirements applied
func Routes() []Route {
	var out []Route
	for _, g := range table {
		for _, child := range g.children {
			r := child
			r.Pattern = g.prefix + child.Pattern
			if r.Pattern == "" {
				r.Pattern = "/"
			}
			r.RouteRequirement = inherit(g.meta, child.RouteRequirement)
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds a route by name
func Lookup(name string) (Route, bool) {
	for _, r := range Routes() {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// MustLookup is Lookup for names known at compile time
func MustLookup(name string) Route {
	r, ok := Lookup(name)
	if !ok {
		panic("navigation: unknown route " + name)
	}
	return r
}

func inherit(parent, child RouteRequirement) RouteRequirement {
	child.RequiresAuth = child.RequiresAuth || parent.RequiresAuth
	child.RequiresModerator = child.RequiresModerator || parent.RequiresModerator
	if child.Title == "" {
		child.Title = parent.Title
	}
	return child
}
