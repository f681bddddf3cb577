package config

const defaultTemplate = `workspace:
  active_plan: p1

plans:
  - id: p1
    authority: Example Borough Council
    name: Local Plan 2045
    status: Drafting
  - id: p2
    authority: Example Borough Council
    name: Town Centre SPD
    status: Draft

rules:
  g1_notice_lead_months: 4
  next_dates: 3
  scrutiny_points: 3
  impacts_cap: 4
  upcoming_milestones: 6

readings:
  - id: balanced
    label: Balanced (policy-led)
    summary: "Treats 'significant weight' to housing need, with precaution for irreversible environmental harm."
    emphasis:
      - {k: Housing delivery, v: Strong}
      - {k: Environmental harm, v: High (conditional)}
      - {k: Infrastructure risk, v: Moderate}
      - {k: Heritage, v: Great weight; benefits test}
    cues:
      - {phrase: where appropriate, meaning: Discretion cue}
      - {phrase: significant weight, meaning: Presumption cue}
      - {phrase: "unless material considerations…", meaning: Override cue}
    sources:
      - "NPPF: 'significant weight' for housing delivery"
      - "Draft plan: 'where appropriate' climate adaptation"
      - "Heritage policy: 'great weight' to conservation"
  - id: delivery
    label: Delivery-leaning
    summary: "Interprets 'significant weight' strongly and treats uncertainty as a reason to strengthen delivery evidence."
    emphasis:
      - {k: Housing delivery, v: Very strong}
      - {k: Infrastructure risk, v: Higher tolerance}
      - {k: Uncertainty, v: Resolve via commitments}
      - {k: Environmental harm, v: High (conditional)}
    cues:
      - {phrase: significant weight, meaning: Presumption cue (strong)}
      - {phrase: should, meaning: Expectation cue}
      - {phrase: where possible, meaning: Flex cue}
    sources:
      - Housing need evidence
      - Delivery trajectory note
      - NPPF housing paragraphs

pressures:
  - id: housing
    title: Housing delivery argument is fragile
    severity: High
    summary: "Small shifts in how 'significant' is read can change defensibility. Strengthen the evidence narrative now."
    why_now:
      - Gateway 2 pack needs a clear story on delivery.
      - "Member questions focus on 'why here' and 'why now'."
    impacts: [Gateway 2 pack, Option set, Consultation narrative]
    primary_route: Policies → Vision & outcomes
    options_route: Scenarios
  - id: transport
    title: Transport sequencing risk needs tightening
    severity: Medium
    summary: Current draft leaves phasing assumptions implicit. Make sequencing legible, even if provisional.
    why_now:
      - Without a phasing story, options look arbitrary.
      - Sequencing affects whether mitigation reads as credible.
    impacts: [Deliverability, Gateway queries]
    primary_route: Places → Sites
    options_route: Scenarios

seed:
  reading: balanced
  milestones:
    - {label: Publish timetable, kind: programme, offset_months: 0}
    - {label: Publish notice, kind: programme, offset_months: 0}
    - {label: Scoping consultation closes, kind: consultation, offset_months: 1}
    - {label: Gateway 1 (earliest), kind: gateway, offset_months: 4}
  evidence:
    - title: Housing Needs Assessment
      status: final
      tags: [housing]
      used_by: [Policy H1, Gateway 2 pack]
    - title: Transport Modelling Note
      status: draft
      tags: [transport]
      used_by: [Sites pipeline]
    - title: Landscape Sensitivity Study
      status: final
      tags: [landscape]
      used_by: [Policy map, Option workshop]
  signals:
    - indicator: Housing completions
      baseline: 850 dpa
      current: 720 dpa
      target: 950 dpa
      trend: down
      severity: High
      status: watching
      notes: Early delivery slightly below expectation; review assumptions and pipeline.
    - indicator: Employment land take-up
      baseline: 5 ha/yr
      current: 6.2 ha/yr
      target: 5 ha/yr
      trend: up
      severity: Low
      status: open
      notes: Performing above target. Monitor quarterly.
    - indicator: Biodiversity net gain
      baseline: 8% net gain
      current: 9.5% net gain
      target: 10% net gain
      trend: stable
      severity: Medium
      status: open
      notes: On track to meet target. Continue monitoring.
  options:
    - label: "Option A: Dispersed growth"
      description: Distribute development across existing settlements.
      pros: [Supports vitality of smaller settlements]
      cons: [Higher per-unit infrastructure costs]
  sites:
    - ref: LAA001
      name: Former factory site, High Street
      stage: allocate
      area_ha: 2.5
      capacity: 80
      notes: Brownfield, excellent transport links
    - ref: LAA002
      name: Land north of Station Road
      stage: assess
      area_ha: 5.0
      notes: Greenfield, requires infrastructure
    - ref: LAA003
      name: Former depot, Mill Lane
      stage: identify
      area_ha: 1.2
      notes: Potential contamination
  site_tasks:
    - title: Update Habitat Regulations Assessment
      owner: Environment team
      status: in_progress
    - title: Strategic Flood Risk Assessment addendum
      owner: Technical team
      status: not_started
    - title: Heritage Impact Assessment for LAA001
      owner: Heritage consultant
      status: done
`
