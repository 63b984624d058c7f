package help

const ColdstartYAML = `# refmap Quick Start

inputs:
  referendum: "data/referendum.csv (';' separated, one line per town)"
  regions: "data/regions.csv (code,name)"
  departments: "data/departments.csv (code,region_code,name)"
  geometry: "data/regions.geojson (one feature per region, code in properties)"

commands:
  basic_run: |
    refmap run

  custom_data: |
    refmap run --data-dir ./input --config refmap.yaml

  table_output: |
    refmap run --format json --fields code,name,ratio

  without_map: |
    refmap run --no-map

  list_areas: |
    refmap areas --format yaml

  list_runs: |
    refmap db runs

  run_details: |
    refmap db run 3

outputs:
  - "refmap-results/run-<id>/referendum_map.svg (choropleth)"
  - "refmap-results/run-<id>/referendum_map.geojson (regions with counts and ratio)"
  - "refmap-results/run-<id>/summary-YYYY-MM-DD.yaml (counts, excluded codes, ranking)"

ratio: "choice_a / (choice_a + choice_b); abstentions and null ballots are reported, not divided"

run_invariants:
  - "Same input files = same fingerprint = cached results reused"
  - "Department codes shorter than 2 characters are zero padded (1 -> 01)"
  - "Referendum rows whose department is not in the departments table are excluded and listed"
  - "Regions are sorted by code in every output"
  - "A region with no ballots for either choice aborts the map"

db_commands:
  runs: "List recorded runs"
  run_id: "Show counts, excluded codes and region results of a run"

fields:
  code: "Region code"
  name: "Region name"
  registered: "Registered voters"
  abstentions: "Abstentions"
  null: "Null ballots"
  choice_a: "Ballots for choice A"
  choice_b: "Ballots for choice B"
  ratio: "Share of choice A among expressed ballots"
`
