package proposal

// Theme defaults.
const (
	DefaultPrimaryColor    = "#522398"
	DefaultSecondaryColor  = "#E0E0E0"
	DefaultTextColor       = "#000000"
	DefaultBackgroundColor = "#FFFFFF"
	DefaultFontFamily      = "sans-serif"
	DefaultOverlayOpacity  = 0.6
)

// Calculator defaults.
const (
	DefaultCostPerScholarship = 2500.0
	DefaultCostPerServiceHour = 50.0
	DefaultMinDonation        = 1000.0
	DefaultMaxDonation        = 50000.0
	DefaultDonationStep       = 1000.0
)

// Asset locations. Root-relative references are served by the main portal.
const (
	DefaultAssetBaseURL = "https://gcu-development-portal.vercel.app"
	AvatarPlaceholder   = "/assets/proposal/avatar-placeholder.jpg"
	InstitutionLogo     = "/assets/RunningLope_WHITE.png"
)

// Fixed page copy.
const (
	InstitutionName    = "Grand Canyon University"
	InstitutionAddress = "3300 West Camelback Road, Phoenix, AZ 85017"
	InstitutionWebsite = "gcu.edu"
	DefaultPageTitle   = "GCU Proposal"
	FooterText         = "Powered by GCU"
	MissingCost        = "—"
)

// Page geometry in CSS pixels (US Letter at 96 dpi).
const (
	PageWidthPx  = 816
	PageHeightPx = 1056
)

// Chart palette entries after the theme colors.
var chartAccents = []string{"#10b981", "#f59e0b", "#6366f1"}

// FontImportURL loads the fonts selectable in the theme editor.
const FontImportURL = "https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600;700&family=Lato:wght@300;400;700&family=Montserrat:wght@300;400;500;600;700&family=Open+Sans:wght@300;400;500;600;700&family=Playfair+Display:wght@400;500;600;700&family=Roboto:wght@300;400;500;700&display=swap"
