package generator

import (
	"github.com/mesh-intelligence/taskflow/internal/random"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Reference tables. All are non-empty; the generators rely on that.
var (
	firstNames = []string{
		"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Avery", "Quinn",
		"Sam", "Jamie", "Drew", "Cameron", "Skyler", "Reese", "Parker", "Rowan",
		"Emerson", "Finley", "Harper", "Hayden", "Kendall", "Logan", "Peyton", "Sage",
	}

	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
		"Thomas", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White", "Clark", "Lewis",
	}

	companyDomains = []string{
		"acme.com", "globex.io", "initech.com", "umbrella.dev", "hooli.com",
		"stark.io", "wayne.co", "wonka.org", "cyberdyne.ai", "taskflow.app",
	}

	taskTitles = []string{
		"Design landing page mockups",
		"Set up CI pipeline",
		"Write onboarding documentation",
		"Fix login redirect bug",
		"Review pull requests",
		"Migrate database schema",
		"Implement search filters",
		"Update dependency versions",
		"Prepare sprint demo",
		"Audit accessibility issues",
		"Optimize image loading",
		"Add unit tests for billing",
		"Refactor notification service",
		"Plan Q3 roadmap",
		"Interview frontend candidates",
		"Configure error monitoring",
		"Draft release notes",
		"Investigate memory leak",
		"Create dashboard widgets",
		"Localize settings page",
	}

	taskDescriptions = []string{
		"Coordinate with the design team and collect feedback before the next review.",
		"Make sure the change is covered by tests and documented in the changelog.",
		"Break the work into smaller steps and track progress on the board.",
		"Check the analytics first to understand how users are affected.",
		"Pair with a teammate to spread knowledge of this area.",
		"Keep the scope small; follow-ups can go into separate tasks.",
		"Verify the fix on staging before closing the task.",
		"Sync with stakeholders to confirm the acceptance criteria.",
	}

	workspaceNames = []string{
		"Product Launch", "Marketing Site", "Mobile App", "Platform Core",
		"Customer Success", "Design System", "Data Pipeline", "Internal Tools",
	}

	workspaceDescriptions = []string{
		"Everything needed to ship the next release.",
		"Planning and execution for the quarter's goals.",
		"Shared space for cross-functional collaboration.",
		"Tracking ongoing maintenance and improvements.",
	}

	teamNames = []string{
		"Frontend", "Backend", "Design", "QA", "DevOps", "Growth", "Research", "Support",
	}

	teamDescriptions = []string{
		"Owns the user-facing experience.",
		"Keeps services fast and reliable.",
		"Turns ideas into shippable work.",
		"Responsible for quality across releases.",
	}
)

// Weight tables.
var (
	userRoleWeights = []random.Choice[string]{
		{Item: types.RoleAdmin, Weight: 10},
		{Item: types.RoleMember, Weight: 70},
		{Item: types.RoleViewer, Weight: 20},
	}

	memberRoleWeights = []random.Choice[string]{
		{Item: types.RoleAdmin, Weight: 15},
		{Item: types.RoleMember, Weight: 70},
		{Item: types.RoleViewer, Weight: 15},
	}

	statusWeights = []random.Choice[string]{
		{Item: types.TaskStatusTodo, Weight: 40},
		{Item: types.TaskStatusInProgress, Weight: 35},
		{Item: types.TaskStatusDone, Weight: 25},
	}

	priorityWeights = []random.Choice[string]{
		{Item: types.TaskPriorityLow, Weight: 30},
		{Item: types.TaskPriorityMedium, Weight: 50},
		{Item: types.TaskPriorityHigh, Weight: 20},
	}
)
