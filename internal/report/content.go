// internal/report/content.go
package report

import (
	"math"
	"sort"

	"assessment-workers/internal/models"
)

// Metric is the report copy for one questionnaire answer.
type Metric struct {
	Field    string
	Label    string
	Question string
	Improve  string
	Maintain string
}

// Feedback picks the text that fits a score: improvement advice up to 3,
// maintenance advice from 4.
func (m Metric) Feedback(score int) string {
	if score <= needsImprovementMax {
		return m.Improve
	}
	return m.Maintain
}

const needsImprovementMax = 3

// ScoredMetric is a metric paired with the respondent's answer.
type ScoredMetric struct {
	Metric
	Score int
}

// Grouping splits answered metrics into weak (ascending) and strong
// (descending) lists. Ties keep display order.
type Grouping struct {
	NeedsImprovement []ScoredMetric
	PerformingWell   []ScoredMetric
}

// GroupMetrics scores every catalog metric present in section. Metrics
// without an integral answer are left out.
func GroupMetrics(catalog []Metric, section map[string]interface{}) Grouping {
	var g Grouping
	for _, m := range catalog {
		score, ok := intScore(section[m.Field])
		if !ok {
			continue
		}
		sm := ScoredMetric{Metric: m, Score: score}
		if score <= needsImprovementMax {
			g.NeedsImprovement = append(g.NeedsImprovement, sm)
		} else {
			g.PerformingWell = append(g.PerformingWell, sm)
		}
	}

	sort.SliceStable(g.NeedsImprovement, func(i, j int) bool {
		return g.NeedsImprovement[i].Score < g.NeedsImprovement[j].Score
	})
	sort.SliceStable(g.PerformingWell, func(i, j int) bool {
		return g.PerformingWell[i].Score > g.PerformingWell[j].Score
	})
	return g
}

func (g Grouping) Empty() bool {
	return len(g.NeedsImprovement) == 0 && len(g.PerformingWell) == 0
}

// intScore accepts the answers the score calculation counts: integral values
// within [MinScore, MaxScore] of any numeric type.
func intScore(v interface{}) (int, bool) {
	n, ok := models.Number(v)
	if !ok || n != math.Trunc(n) || n < models.MinScore || n > models.MaxScore {
		return 0, false
	}
	return int(n), true
}

// BusinessGuidance returns the action line for a transferability score.
func BusinessGuidance(score float64) string {
	switch {
	case score >= 75:
		return "Excellent! Your business shows strong transferability. Focus on maintaining and optimizing your current strengths."
	case score >= 50:
		return "Good progress! Focus on the improvement areas identified above to increase your business value."
	default:
		return "Significant work needed. Prioritize the critical improvement areas to make your business more transferable."
	}
}

// PersonalGuidance returns the action line for a personal readiness score.
func PersonalGuidance(score float64) string {
	switch {
	case score >= 75:
		return "Excellent! You are personally ready for a successful exit. Continue your preparation."
	case score >= 50:
		return "Good preparation! Address the personal areas above to feel fully confident about your exit."
	default:
		return "Important personal work needed. Focus on the improvement areas to ensure a successful transition."
	}
}

var priorityActions = []string{
	`Review all items marked as "needs improvement" above`,
	"Create a timeline for addressing critical gaps",
	"Consider working with professional advisors for complex areas",
	"Schedule regular reviews to track progress",
	"Focus on the highest-impact improvements first",
}

var BusinessMetrics = []Metric{
	{
		Field:    "financial_statements",
		Label:    "Financial Statements",
		Question: "How audited, current, & due diligence-ready are your financial statements?",
		Improve:  "Implement monthly financial reporting with profit and cash flow tracking to CPA standards. Get quarterly audited financial statements and maintain clean books.",
		Maintain: "Continue your strong financial documentation practices. Consider upgrading to more advanced financial analytics and forecasting tools.",
	},
	{
		Field:    "profitability",
		Label:    "Profitability",
		Question: "How clear & consistent are your profitability & cash flow trends?",
		Improve:  "Conduct a detailed profitability analysis by product/service line. Focus on high-margin offerings and reduce or eliminate low-margin activities.",
		Maintain: "Maintain your strong profit margins. Look for opportunities to expand high-margin services and optimize pricing strategies.",
	},
	{
		Field:    "operating_expenses",
		Label:    "Operating Expenses",
		Question: "How optimized are your operating expenses for profitability?",
		Improve:  "Conduct an expense audit to identify 10%+ cost savings and implement a cost management plan covering key risks.",
		Maintain: "Continue efficient expense management. Look for opportunities to reinvest savings into growth initiatives.",
	},
	{
		Field:    "customer_base",
		Label:    "Customer Base",
		Question: "How diversified is your customer base to reduce revenue risk?",
		Improve:  "Develop a sales strategy to target new customer segments and reduce reliance on top customers. Diversify your customer portfolio to reduce concentration risk.",
		Maintain: "Continue building strong customer relationships. Consider loyalty programs and regular customer satisfaction surveys to maintain your strong base.",
	},
	{
		Field:    "customer_relationships",
		Label:    "Customer Relationships",
		Question: "How documented are customer relationships for annual revenue retention?",
		Improve:  "Analyze sales trends, implement customer retention programs, and invest in sales training to improve relationship management.",
		Maintain: "Maintain excellent customer relationships. Consider customer advisory boards and expanded service offerings.",
	},
	{
		Field:    "sales_growth",
		Label:    "Sales Growth",
		Question: "How consistent is your sales growth over the past three years?",
		Improve:  "Create a 3-year growth plan with clear market/product targets within 3 months. Focus on new customer acquisition and expansion of existing accounts.",
		Maintain: "Maintain your strong sales growth trajectory. Document your successful sales processes and consider expanding to new markets.",
	},
	{
		Field:    "brand_value",
		Label:    "Brand Value",
		Question: "How clear & customer-recognized is your brand's unique value proposition?",
		Improve:  "Conduct customer surveys to refine UVP and launch a branding campaign to improve marketing consistency and brand recognition.",
		Maintain: "Continue investing in brand development and marketing. Consider trademark protection and brand extension opportunities.",
	},
	{
		Field:    "marketing",
		Label:    "Marketing",
		Question: "How effective & measurable are your documented marketing campaigns?",
		Improve:  "Develop a comprehensive marketing plan with clear ROI tracking and digital marketing campaigns to increase visibility.",
		Maintain: "Maintain your effective marketing approach. Consider expanding successful campaigns and exploring new marketing channels.",
	},
	{
		Field:    "market_position",
		Label:    "Market Position",
		Question: "How strong is your market position compared to competitors?",
		Improve:  "Conduct a market analysis to identify and strengthen competitive positioning. Develop unique value propositions that differentiate your business.",
		Maintain: "Continue strengthening your market position. Monitor competitors and stay ahead of industry trends.",
	},
	{
		Field:    "management_capability",
		Label:    "Management Capability",
		Question: "How capable is your management team of running the business independently?",
		Improve:  "Provide management training for 30+ days without owner input. Create clear management structure and delegation systems.",
		Maintain: "Continue developing management capabilities. Consider leadership development programs and succession planning.",
	},
	{
		Field:    "leadership_roles",
		Label:    "Leadership Roles",
		Question: "How clearly documented are leadership roles & responsibilities?",
		Improve:  "Create an org chart and detailed role descriptions, storing them in a shared system accessible to all key roles.",
		Maintain: "Continue strong leadership development. Document processes and consider cross-training for critical roles.",
	},
	{
		Field:    "succession_planning",
		Label:    "Succession Planning",
		Question: "How robust is your succession plan for key leadership positions?",
		Improve:  "Develop a succession plan with backup roles identified for all key roles and review it annually.",
		Maintain: "Maintain and regularly update your succession plan. Provide ongoing leadership development opportunities.",
	},
	{
		Field:    "employee_turnover",
		Label:    "Employee Turnover",
		Question: "How low is employee turnover & high are morale & competency?",
		Improve:  "Conduct employee satisfaction surveys and address concerns with retention incentives and improved company culture.",
		Maintain: "Continue your strong employee retention. Consider employee development programs and recognition initiatives.",
	},
	{
		Field:    "business_processes",
		Label:    "Business Processes",
		Question: "How well-documented & automated are core business processes?",
		Improve:  "Document and automate key business processes. Create standard operating procedures for all critical functions.",
		Maintain: "Continue optimizing business processes. Look for automation opportunities and process improvement initiatives.",
	},
	{
		Field:    "it_systems",
		Label:    "IT Systems",
		Question: "How secure, scalable, & licensed are your IT systems?",
		Improve:  "Conduct an IT security audit, upgrade to licensed SaaS platforms, and ensure 99.9%+ uptime and backup plans.",
		Maintain: "Maintain strong IT infrastructure. Consider cloud migration and advanced security measures for continued reliability.",
	},
	{
		Field:    "operations_continuity",
		Label:    "Operations Continuity",
		Question: "How seamlessly can operations continue during an ownership transition?",
		Improve:  "Develop and test business continuity plan to ensure operational continuity in various disruption scenarios.",
		Maintain: "Continue strong operational processes. Regularly test and update business continuity plans.",
	},
	{
		Field:    "technology_systems",
		Label:    "Technology Systems",
		Question: "How current, secure, & licensed are your technology systems?",
		Improve:  "Update systems, obtain licenses, and pursue SOC 2 compliance within 12 months for improved operational efficiency.",
		Maintain: "Continue investing in technology upgrades. Consider advanced automation and integration opportunities.",
	},
	{
		Field:    "proprietary_tech",
		Label:    "Proprietary Tech",
		Question: "How valuable are proprietary tech or innovations to your competitive advantage?",
		Improve:  "Identify and patent proprietary tech, linking it to revenue contributions to increase competitive advantage.",
		Maintain: "Continue protecting and developing proprietary technology. Consider licensing opportunities.",
	},
	{
		Field:    "operational_processes",
		Label:    "Operational Processes",
		Question: "How optimized are key operational processes for cost-effectiveness?",
		Improve:  "Map key processes and implement cost-saving measures to achieve 10-15% efficiency gains through streamlined operations.",
		Maintain: "Continue optimizing operational processes. Look for opportunities to scale and improve efficiency further.",
	},
	{
		Field:    "scalability",
		Label:    "Scalability",
		Question: "How scalable are operations to handle increased demand?",
		Improve:  "Invest in scalable tools and processes to handle 20-30% demand increase without adding significant costs/investment.",
		Maintain: "Continue building scalable systems. Plan for growth capacity and infrastructure improvements.",
	},
	{
		Field:    "risk_management",
		Label:    "Risk Management",
		Question: "How comprehensive is your documented risk management plan?",
		Improve:  "Develop a risk management plan covering key risks, reviewed every 6 months with mitigation strategies in place.",
		Maintain: "Continue strong risk management practices. Consider expanding risk assessment to new business areas.",
	},
	{
		Field:    "business_resilience",
		Label:    "Business Resilience",
		Question: "How resilient is your business to market or industry volatility?",
		Improve:  "Stress-test financials for volatility and build reserves to stabilize revenue during market downturns.",
		Maintain: "Maintain strong business resilience. Continue building reserves and diversifying revenue sources.",
	},
	{
		Field:    "legal_contracts",
		Label:    "Legal Contracts",
		Question: "How current & documented are all legal contracts? No Legal Issues?",
		Improve:  "Review all contracts with a lawyer to ensure they are current and dispute-free, with proper legal protections in place.",
		Maintain: "Continue maintaining excellent legal compliance. Regular contract reviews and legal updates are recommended.",
	},
	{
		Field:    "supplier_contracts",
		Label:    "Supplier Contracts",
		Question: "How favorable, documented, & transferable are supplier contracts?",
		Improve:  "Negotiate multi-year supplier contracts with cost savings and ensure diversified supplier base to reduce risk.",
		Maintain: "Continue managing strong supplier relationships. Consider strategic partnerships and contract optimization.",
	},
	{
		Field:    "growth_strategy",
		Label:    "Growth Strategy",
		Question: "How clear is your documented growth strategy for new markets/segments?",
		Improve:  "Develop a 3-year growth plan targeting 15%+ revenue increase with actionable plans in place within 2 months.",
		Maintain: "Continue executing your strong growth strategy. Consider strategic partnerships or acquisition opportunities.",
	},
	{
		Field:    "revenue_streams",
		Label:    "Revenue Streams",
		Question: "How well-identified are potential new revenue streams?",
		Improve:  "Pilot two new revenue streams and document potential impact on business. Focus on recurring revenue opportunities.",
		Maintain: "Diversify revenue streams further and test new service offerings while maintaining current strengths.",
	},
}

var PersonalMetrics = []Metric{
	{
		Field:    "personal_identity",
		Label:    "Personal Identity",
		Question: "How clear is your personal identity beyond being a business owner?",
		Improve:  "Explore new hobbies or volunteer work to build identity outside the business. Meet with financial advisor to create a post-sale budget and investment plan.",
		Maintain: "Continue developing your personal identity outside the business. Consider mentoring others or expanding personal interests.",
	},
	{
		Field:    "physical_health",
		Label:    "Physical Health",
		Question: "How strong is your physical health heading into next phase of life?",
		Improve:  "Start a 30-minute daily exercise routine and schedule a comprehensive health checkup to ensure you're prepared for life's next phase.",
		Maintain: "Continue maintaining excellent physical health. Consider preventive care and stress management techniques.",
	},
	{
		Field:    "financial_plan",
		Label:    "Financial Plan",
		Question: "How secure is your personal financial plan post-sale?",
		Improve:  "Meet with financial advisor to create detailed post-sale budget and investment plan covering all personal financial goals.",
		Maintain: "Continue working with your financial advisor. Review and update your financial plan regularly as circumstances change.",
	},
	{
		Field:    "family_communication",
		Label:    "Family Communication",
		Question: "How open are you with family about the sale's impact?",
		Improve:  "Schedule a family meeting to discuss sale plans and impacts. Ensure all family members understand and support the transition.",
		Maintain: "Continue maintaining excellent family communication. Regular family meetings help ensure continued alignment.",
	},
	{
		Field:    "future_vision",
		Label:    "Future Vision",
		Question: "How clear is your vision for life after the sale?",
		Improve:  "Write a 1-year post-sale action plan with 3+ personal goals and create a vision board for your future aspirations.",
		Maintain: "Continue developing your post-sale vision. Consider expanding your goals and exploring new opportunities.",
	},
	{
		Field:    "professional_advisors",
		Label:    "Professional Advisors",
		Question: "How well do you leverage professional advisors?",
		Improve:  "Hire a business broker and schedule monthly advisor meetings with CPA, lawyer, and broker to ensure proper guidance.",
		Maintain: "Continue working with your professional advisor team. Consider expanding your network for additional expertise.",
	},
	{
		Field:    "estate_plan",
		Label:    "Estate Plan",
		Question: "How current is your personal estate plan for post-sale?",
		Improve:  "Hire an estate planning lawyer to draft or update your estate plan within 3 months, including will, trusts, and tax planning.",
		Maintain: "Continue maintaining your estate plan. Review and update it regularly, especially after major life changes.",
	},
	{
		Field:    "energy_level",
		Label:    "Energy Level",
		Question: "How is your level of energy for the sale process?",
		Improve:  "Establish a consistent sleep schedule and monitor energy levels. Consider lifestyle changes to boost daily energy and vitality.",
		Maintain: "Continue maintaining high energy levels. Consider stress management and work-life balance optimization.",
	},
	{
		Field:    "process_confidence",
		Label:    "Process Confidence",
		Question: "How confident are you in navigating the process with potential buyers?",
		Improve:  "Take a course to familiarize yourself with the sale process, or start negotiating with an experienced business broker for guidance.",
		Maintain: "Continue building confidence in the sale process. Stay informed about market conditions and sale strategies.",
	},
	{
		Field:    "legal_protections",
		Label:    "Legal Protections",
		Question: "How clear are your legal protections for sale proceeds?",
		Improve:  "Consult a lawyer to set up a trust for sale proceeds protection and ensure all legal structures are properly in place.",
		Maintain: "Continue maintaining strong legal protections. Regular legal reviews ensure continued compliance and protection.",
	},
}
